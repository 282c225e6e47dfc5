package errors

// 응답 MESSAGE 코드 상수 정의
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 공통 ====================
	MsgSuccess             = "SUCCESS"              // 성공
	MsgSuccessAndReplaced  = "SUCCESS_AND_REPLACED" // 신규 등록 + 기존 상품 교체 성공
	MsgKeyError            = "KEY_ERROR"            // 필수 항목 누락
	MsgInternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류

	// ==================== 인증 ====================
	MsgInvalidToken = "INVALID_TOKEN" // 잘못된 토큰
	MsgInvalidUser  = "INVALID_USER"  // 사용자 없음 / 권한 없음
	MsgUnauthorized = "UNAUTHORIZED"  // 구매 이력 없는 리뷰 시도

	// ==================== 상품 ====================
	MsgNoItem            = "NO_ITEM"           // 상품 없음
	MsgInvalidProduct    = "INVALID_PRODUCT"   // 본인 소유 상품 아님
	MsgInvalidOrderBy    = "INVALID_ORDER_BY"  // 잘못된 정렬 조건
	MsgImageFilesNone    = "IMAGE_FILES_NONE"  // 이미지 파일 없음
	MsgExceedMaxUpload   = "EXCEED_MAX_UPLOAD" // 하루 등록 한도 초과
	MsgInsufficientPoint = "INSUFFICIENT_POINT" // 포인트 잔액 부족

	// ==================== 리뷰/댓글 ====================
	MsgNoContent           = "NO_CONTENT"            // 내용 없음
	MsgNotExistReview      = "NOT_EXIST_REVIEW"      // 리뷰 없음
	MsgAlreadyExistReview  = "ALREADY_EXIST_REVIEW"  // 이미 리뷰 작성함
	MsgAlreadyExistComment = "ALREADY_EXIST_COMMENT" // 이미 댓글 작성함
)
