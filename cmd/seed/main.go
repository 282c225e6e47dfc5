package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sunhobaek/freshmarket-backend/config"
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// 상품 XLSX 컬럼: 판매자ID, 상품명, 가격, 재고, 원산지ID, 보관방식ID, 설명
func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Repository 생성
	productRepo := repository.NewProductRepository(db.GetDB())

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// 배치로 저장
	batchSize := 1000
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	// 첫 번째 시트 이름 가져오기
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows found in sheet %s", sheetName)
	}

	var products []model.Product
	// 첫 행은 헤더
	for i, row := range rows[1:] {
		if len(row) < 4 {
			log.Printf("Skipping row %d: not enough columns", i+2)
			continue
		}

		sellerID, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 32)
		if err != nil {
			log.Printf("Skipping row %d: invalid seller id %q", i+2, row[0])
			continue
		}
		name := strings.TrimSpace(row[1])
		if name == "" {
			log.Printf("Skipping row %d: empty product name", i+2)
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			log.Printf("Skipping row %d: invalid price %q", i+2, row[2])
			continue
		}
		stock, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			log.Printf("Skipping row %d: invalid stock %q", i+2, row[3])
			continue
		}

		product := model.Product{
			UserID: uint(sellerID),
			Name:   name,
			Price:  price,
			Stock:  stock,
		}
		if len(row) > 4 {
			if id, err := strconv.ParseUint(strings.TrimSpace(row[4]), 10, 32); err == nil {
				originID := uint(id)
				product.OriginID = &originID
			}
		}
		if len(row) > 5 {
			if id, err := strconv.ParseUint(strings.TrimSpace(row[5]), 10, 32); err == nil {
				storageID := uint(id)
				product.StorageID = &storageID
			}
		}
		if len(row) > 6 {
			product.Description = strings.TrimSpace(row[6])
		}

		products = append(products, product)
	}

	return products, nil
}
