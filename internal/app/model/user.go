package model

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                               // 사용자 ID
	KakaoAccount string    `gorm:"size:100;uniqueIndex;not null" json:"kakao_account"` // 카카오 계정 식별자
	Point        int64     `gorm:"not null;default:0" json:"point"`                    // 포인트 잔액
	Name         string    `gorm:"size:100;not null" json:"name"`                      // 이름 (카카오 닉네임)
	ProfileImage string    `gorm:"size:500" json:"profile_image"`                      // 프로필 이미지 URL
	Email        string    `gorm:"size:200" json:"email"`                              // 이메일
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Products []Product `gorm:"foreignKey:UserID" json:"-"` // 판매 상품 목록
	Orders   []Order   `gorm:"foreignKey:UserID" json:"-"` // 구매 내역
	Reviews  []Review  `gorm:"foreignKey:UserID" json:"-"` // 작성 리뷰
}

func (User) TableName() string {
	return "users"
}
