package model

import (
	"time"
)

// Origin 원산지 구분 (고정 enum 테이블)
type Origin struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:20;not null" json:"name"`
}

func (Origin) TableName() string {
	return "origins"
}

// Storage 보관 방식 구분 (고정 enum 테이블)
type Storage struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:20;not null" json:"name"`
}

func (Storage) TableName() string {
	return "storages"
}

const (
	OriginDomestic = "DOMESTIC"
	OriginImported = "IMPORTED"

	StorageCold   = "COLD"
	StorageFrozen = "FROZEN"
	StorageDry    = "DRY"
)

type Product struct {
	ID              uint      `gorm:"primarykey" json:"id"`            // 상품 ID
	UserID          uint      `gorm:"not null;index" json:"user_id"`   // 판매자 ID
	OriginID        *uint     `gorm:"index" json:"origin_id"`          // 원산지 ID
	StorageID       *uint     `gorm:"index" json:"storage_id"`         // 보관 방식 ID
	Name            string    `gorm:"size:50;not null" json:"name"`    // 상품명
	Price           float64   `gorm:"not null" json:"price"`           // 가격
	OrderedQuantity int       `gorm:"not null;default:0" json:"ordered_quantity"` // 누적 판매 수량
	Description     string    `gorm:"type:text" json:"description"`    // 상품 설명
	Stock           int       `gorm:"not null" json:"stock"`           // 재고 수량
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User    User     `gorm:"foreignKey:UserID" json:"-"`    // 판매자 정보
	Origin  *Origin  `gorm:"foreignKey:OriginID" json:"-"`  // 원산지 정보
	Storage *Storage `gorm:"foreignKey:StorageID" json:"-"` // 보관 방식 정보
	Images  []Image  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"` // 상품 이미지 목록
}

func (Product) TableName() string {
	return "products"
}

// Image 상품 이미지. URL은 원격 업로드가 끝난 뒤에 채워진다.
type Image struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	ProductID   uint    `gorm:"not null;index" json:"product_id"` // 상품 ID
	Title       string  `gorm:"size:100;default:''" json:"title"` // 원본 파일명
	URL         *string `gorm:"size:200" json:"url"`              // 공개 URL (업로드 완료 후)
	IsThumbnail bool    `gorm:"default:false" json:"is_thumbnail"` // 대표 이미지 여부
	ImageUUID   string  `gorm:"size:100" json:"-"`                // 오브젝트 스토리지 키

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Image) TableName() string {
	return "images"
}

// Order 구매 영수증. 생성 이후 수정/삭제되지 않는다.
type Order struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`    // 구매자 ID
	ProductID uint      `gorm:"not null;index" json:"product_id"` // 상품 ID
	Quantity  int       `gorm:"not null" json:"quantity"`         // 구매 수량
	CreatedAt time.Time `json:"created_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
