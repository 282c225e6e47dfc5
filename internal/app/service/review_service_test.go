package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/db"
	"gorm.io/gorm"
)

func setupReviewServiceTest(t *testing.T) (ReviewService, *gorm.DB, *model.User, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	reviewRepo := repository.NewReviewRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	reviewService := NewReviewService(reviewRepo, orderRepo, productRepo, newFakeStorage(), testDB)

	seller := &model.User{KakaoAccount: "3001", Name: "판매자"}
	testDB.Create(seller)

	buyer := &model.User{KakaoAccount: "3002", Name: "구매자"}
	testDB.Create(buyer)

	product := &model.Product{
		UserID: seller.ID,
		Name:   "햇양파 3kg",
		Price:  8000,
		Stock:  10,
	}
	testDB.Create(product)

	return reviewService, testDB, seller, buyer, product
}

func recordPurchase(t *testing.T, testDB *gorm.DB, buyerID, productID uint) {
	t.Helper()
	require.NoError(t, testDB.Create(&model.Order{
		UserID:    buyerID,
		ProductID: productID,
		Quantity:  1,
	}).Error)
}

func reviewImage() *ImageUpload {
	uploads := testUploads("review.jpg")
	return &uploads[0]
}

func TestReviewService_PostReview_Success(t *testing.T) {
	reviewService, testDB, _, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	grade := 5
	review, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "아주 신선해요", &grade, reviewImage())
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Nil(t, review.CommentID)
	require.NotNil(t, review.ImageURL)
	assert.Contains(t, *review.ImageURL, "https://cdn.test/")

	var stored model.Review
	testDB.First(&stored, review.ID)
	require.NotNil(t, stored.ImageURL)
	require.NotNil(t, stored.Grade)
	assert.Equal(t, 5, *stored.Grade)
}

func TestReviewService_PostReview_RequiresPurchase(t *testing.T) {
	reviewService, _, _, buyer, product := setupReviewServiceTest(t)

	_, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "내용", nil, reviewImage())
	assert.ErrorIs(t, err, ErrReviewUnauthorized)
}

func TestReviewService_PostReview_Duplicate(t *testing.T) {
	reviewService, testDB, _, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	_, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "첫 후기", nil, reviewImage())
	require.NoError(t, err)

	_, err = reviewService.PostReview(context.Background(), buyer.ID, product.ID, "두 번째 후기", nil, reviewImage())
	assert.ErrorIs(t, err, ErrDuplicateReview)
}

func TestReviewService_PostReview_MissingInputs(t *testing.T) {
	reviewService, testDB, _, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	_, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "", nil, reviewImage())
	assert.ErrorIs(t, err, ErrMissingContent)

	_, err = reviewService.PostReview(context.Background(), buyer.ID, product.ID, "내용", nil, nil)
	assert.ErrorIs(t, err, ErrNoImages)

	// Image is checked before content, so missing both reports the image
	_, err = reviewService.PostReview(context.Background(), buyer.ID, product.ID, "", nil, nil)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestReviewService_PostComment_OnlyProductOwner(t *testing.T) {
	reviewService, testDB, _, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	review, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "후기", nil, reviewImage())
	require.NoError(t, err)

	// The buyer does not own the product, so the reply is rejected even
	// though the review exists
	_, err = reviewService.PostComment(buyer.ID, product.ID, review.ID, "감사합니다")
	assert.ErrorIs(t, err, ErrCommentForbidden)
}

func TestReviewService_PostComment_Success(t *testing.T) {
	reviewService, testDB, seller, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	review, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "후기", nil, reviewImage())
	require.NoError(t, err)

	comment, err := reviewService.PostComment(seller.ID, product.ID, review.ID, "감사합니다")
	require.NoError(t, err)
	require.NotNil(t, comment.CommentID)
	assert.Equal(t, review.ID, *comment.CommentID)
	assert.Nil(t, comment.Grade)
	assert.Nil(t, comment.ImageURL)
}

func TestReviewService_PostComment_NoReviewOnProduct(t *testing.T) {
	reviewService, _, seller, _, product := setupReviewServiceTest(t)

	_, err := reviewService.PostComment(seller.ID, product.ID, 1, "감사합니다")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_PostComment_Duplicate(t *testing.T) {
	reviewService, testDB, seller, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	review, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "후기", nil, reviewImage())
	require.NoError(t, err)

	_, err = reviewService.PostComment(seller.ID, product.ID, review.ID, "첫 댓글")
	require.NoError(t, err)

	_, err = reviewService.PostComment(seller.ID, product.ID, review.ID, "두 번째 댓글")
	assert.ErrorIs(t, err, ErrDuplicateComment)
}

func TestReviewService_GetComments_NestsSingleComment(t *testing.T) {
	reviewService, testDB, seller, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	grade := 4
	review, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "맛있어요", &grade, reviewImage())
	require.NoError(t, err)

	_, err = reviewService.PostComment(seller.ID, product.ID, review.ID, "또 오세요")
	require.NoError(t, err)

	threads, err := reviewService.GetComments(product.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)

	thread := threads[0]
	assert.Equal(t, review.ID, thread.ID)
	assert.Equal(t, buyer.Name, thread.UserName)
	require.NotNil(t, thread.Grade)
	assert.Equal(t, 4, *thread.Grade)
	require.NotNil(t, thread.Comment)
	assert.Equal(t, seller.Name, thread.Comment.UserName)
	assert.Equal(t, "또 오세요", thread.Comment.Content)
}

func TestReviewService_RecentReviews_NewestFirstWithoutComments(t *testing.T) {
	reviewService, testDB, seller, buyer, product := setupReviewServiceTest(t)
	recordPurchase(t, testDB, buyer.ID, product.ID)

	second := &model.Product{UserID: seller.ID, Name: "두 번째 상품", Price: 5000, Stock: 3}
	testDB.Create(second)
	recordPurchase(t, testDB, buyer.ID, second.ID)

	first, err := reviewService.PostReview(context.Background(), buyer.ID, product.ID, "먼저 쓴 후기", nil, reviewImage())
	require.NoError(t, err)
	latest, err := reviewService.PostReview(context.Background(), buyer.ID, second.ID, "나중에 쓴 후기", nil, reviewImage())
	require.NoError(t, err)

	_, err = reviewService.PostComment(seller.ID, product.ID, first.ID, "댓글")
	require.NoError(t, err)

	feed, err := reviewService.RecentReviews()
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, latest.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
	assert.Equal(t, "두 번째 상품", feed[0].ProductName)
}
