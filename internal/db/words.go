package db

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const maxWordLength = 40

type wordRecord struct {
	Category string
	Word     string
}

// LoadWordLibrary reads words from a CSV and inserts the ones not already in
// the word_library table. It returns how many rows were added.
func LoadWordLibrary(ctx context.Context, conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, errors.New("db connection is nil")
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	records, err := readWords(file)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		entry := WordLibrary{Category: record.Category, Word: record.Word}
		if err := conn.WithContext(ctx).Create(&entry).Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// RandomWords returns up to limit library words in random order.
func RandomWords(ctx context.Context, conn *gorm.DB, limit int) ([]string, error) {
	if conn == nil {
		return nil, errors.New("db connection is nil")
	}
	var words []string
	err := conn.WithContext(ctx).
		Model(&WordLibrary{}).
		Order("random()").
		Limit(limit).
		Pluck("word", &words).Error
	if err != nil {
		return nil, err
	}
	return words, nil
}

// readWords accepts "category,word" or "word" rows after a header row.
func readWords(r io.Reader) ([]wordRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []wordRecord
	seen := make(map[string]bool)
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		record := wordRecord{}
		if len(row) >= 2 {
			record.Category = strings.TrimSpace(row[0])
			record.Word = strings.TrimSpace(row[1])
		} else {
			record.Word = strings.TrimSpace(row[0])
		}
		record.Word = strings.ToLower(strings.Join(strings.Fields(record.Word), " "))
		if record.Word == "" || len(record.Word) > maxWordLength || seen[record.Word] {
			continue
		}
		seen[record.Word] = true
		records = append(records, record)
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
