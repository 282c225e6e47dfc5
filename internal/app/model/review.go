package model

import (
	"time"
)

// Review 리뷰와 댓글을 한 테이블로 담는다.
// CommentID가 nil이면 상품에 대한 최상위 리뷰, 다른 리뷰를 가리키면
// 그 리뷰에 대한 판매자 댓글이다 (grade/image는 비워진다).
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`    // 작성자 ID
	ProductID uint      `gorm:"not null;index" json:"product_id"` // 상품 ID
	ImageURL  *string   `gorm:"size:200" json:"image_url"`        // 리뷰 이미지 URL (업로드 완료 후)
	ImageUUID *string   `gorm:"size:100" json:"-"`                // 오브젝트 스토리지 키
	Grade     *int      `json:"grade"`                            // 평점 (1-5), 댓글이면 nil
	Content   string    `gorm:"type:text;not null" json:"content"`
	CommentID *uint     `gorm:"index" json:"comment_id"` // 부모 리뷰 ID (댓글일 때만)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

// IsComment reports whether the row replies to another review.
func (r *Review) IsComment() bool {
	return r.CommentID != nil
}
