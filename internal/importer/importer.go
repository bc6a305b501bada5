package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/justasSav/eeps/internal/domain"
)

// CatalogWriter is the subset of the menu store the importer writes through.
type CatalogWriter interface {
	UpsertCategory(ctx context.Context, c domain.Category) error
	UpsertProduct(ctx context.Context, p domain.Product) error
}

// CSVImporter reads menu CSV exports and inserts/updates categories and
// products. Expected columns: category_id, category_name, category_sort,
// id, name, description, base_price, image_url, is_available, dietary_tags,
// sort_order. Dietary tags are pipe-separated.
type CSVImporter struct {
	reader *csv.Reader
	repo   CatalogWriter
}

func NewCSVImporter(r io.Reader, repo CatalogWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader: csvr,
		repo:   repo,
	}
}

type csvRow struct {
	CategoryID   string
	CategoryName string
	CategorySort int
	ID           string
	Name         string
	Desc         string
	BasePrice    int64
	ImageURL     string
	IsAvailable  bool
	DietaryTags  []string
	SortOrder    int
}

// Run parses CSV rows and upserts each product, creating its category on
// first sight.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	seenCategories := map[string]bool{}
	imported := 0

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if !seenCategories[row.CategoryID] {
			category := domain.Category{
				ID:        row.CategoryID,
				Name:      row.CategoryName,
				SortOrder: row.CategorySort,
			}
			if category.Name == "" {
				category.Name = row.CategoryID
			}
			if err := i.repo.UpsertCategory(ctx, category); err != nil {
				return imported, fmt.Errorf("upsert category %q: %w", row.CategoryID, err)
			}
			seenCategories[row.CategoryID] = true
		}

		p := domain.Product{
			ID:          row.ID,
			CategoryID:  row.CategoryID,
			Name:        row.Name,
			Description: row.Desc,
			BasePrice:   row.BasePrice,
			ImageURL:    row.ImageURL,
			IsAvailable: row.IsAvailable,
			DietaryTags: row.DietaryTags,
			SortOrder:   row.SortOrder,
		}
		if err := i.repo.UpsertProduct(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", row.ID, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	id := pick(record, index, "id")
	categoryID := pick(record, index, "category_id")
	if id == "" && categoryID == "" {
		return nil, nil
	}
	if id == "" || categoryID == "" {
		return nil, fmt.Errorf("row missing id or category_id: %v", record)
	}
	name := pick(record, index, "name")
	if name == "" {
		return nil, fmt.Errorf("product %q has no name", id)
	}

	priceStr := pick(record, index, "base_price")
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("product %q has invalid base_price %q", id, priceStr)
	}

	available := true
	if v := pick(record, index, "is_available"); v != "" {
		available, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("product %q has invalid is_available %q", id, v)
		}
	}

	categorySort := 0
	if v := pick(record, index, "category_sort"); v != "" {
		categorySort, _ = strconv.Atoi(v)
	}
	sortOrder := 0
	if v := pick(record, index, "sort_order"); v != "" {
		sortOrder, _ = strconv.Atoi(v)
	}

	tags := []string{}
	if v := pick(record, index, "dietary_tags"); v != "" {
		for _, tag := range strings.Split(v, "|") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	return &csvRow{
		CategoryID:   categoryID,
		CategoryName: pick(record, index, "category_name"),
		CategorySort: categorySort,
		ID:           id,
		Name:         name,
		Desc:         pick(record, index, "description"),
		BasePrice:    price,
		ImageURL:     pick(record, index, "image_url"),
		IsAvailable:  available,
		DietaryTags:  tags,
		SortOrder:    sortOrder,
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
