package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jszwec/csvutil"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
)

const documentExt = ".csv"

// addressRow - строка CSV-документа
type addressRow struct {
	HouseNumber string `csv:"House number"`
	Street      string `csv:"Street name"`
	Postcode    string `csv:"Postal code"`
	Latitude    string `csv:"Latitude"`
	Longitude   string `csv:"Longitude"`
}

// documentHeader - заголовок документа, пишется и для пустого набора адресов
var documentHeader = []string{"House number", "Street name", "Postal code", "Latitude", "Longitude"}

type documentRepository struct {
	root   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewDocumentRepository создает хранилище документов в каталоге root.
// Документы лежат по пути <root>/<Country>/<State>/<City>.csv
func NewDocumentRepository(root string, logger *zap.Logger) repository.DocumentRepository {
	return &documentRepository{
		root:   root,
		logger: logger,
	}
}

func (r *documentRepository) Insert(ctx context.Context, rows []domain.AddressRecord, location domain.Location) (*domain.SeededDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, path := r.paths(location)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	if err := writeDocument(path, rows); err != nil {
		r.logger.Error("Failed to write document",
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}

	doc, err := r.read(path, location)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("address document %s could not be inserted", path)
	}

	r.logger.Info("Document inserted",
		zap.String("path", path),
		zap.Int64("size", doc.Size))

	return doc, nil
}

func (r *documentRepository) Get(ctx context.Context, location domain.Location) (*domain.SeededDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, path := r.paths(location)
	return r.read(path, location)
}

func (r *documentRepository) GetAll(ctx context.Context) ([]domain.SeededDocument, error) {
	documents := make([]domain.SeededDocument, 0)

	countries, err := os.ReadDir(r.root)
	if errors.Is(err, os.ErrNotExist) {
		return documents, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	for _, country := range countries {
		if !country.IsDir() {
			continue
		}

		states, err := os.ReadDir(filepath.Join(r.root, country.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list states of %s: %w", country.Name(), err)
		}

		for _, state := range states {
			if !state.IsDir() {
				continue
			}

			stateDir := filepath.Join(r.root, country.Name(), state.Name())
			files, err := os.ReadDir(stateDir)
			if err != nil {
				return nil, fmt.Errorf("failed to list cities of %s: %w", state.Name(), err)
			}

			for _, file := range files {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if file.IsDir() || filepath.Ext(file.Name()) != documentExt {
					continue
				}

				size, err := countRows(filepath.Join(stateDir, file.Name()))
				if err != nil {
					return nil, err
				}

				documents = append(documents, domain.SeededDocument{
					City:    unescapeName(strings.TrimSuffix(file.Name(), documentExt)),
					State:   unescapeName(state.Name()),
					Country: unescapeName(country.Name()),
					Size:    size,
				})
			}
		}
	}

	return documents, nil
}

func (r *documentRepository) paths(location domain.Location) (dir, path string) {
	dir = filepath.Join(r.root, escapeName(location.Country), escapeName(location.State))
	path = filepath.Join(dir, escapeName(location.City)+documentExt)
	return dir, path
}

// read возвращает nil, nil если файла нет
func (r *documentRepository) read(path string, location domain.Location) (*domain.SeededDocument, error) {
	size, err := countRows(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	areaID := location.AreaID
	return &domain.SeededDocument{
		City:    location.City,
		State:   location.State,
		Country: location.Country,
		AreaID:  &areaID,
		Size:    size,
	}, nil
}

// writeDocument пишет во временный файл и переименовывает его, чтобы читатели не видели половину документа
func writeDocument(path string, rows []domain.AddressRecord) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".document-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set document mode: %w", err)
	}

	w := csv.NewWriter(tmp)
	enc := csvutil.NewEncoder(w)
	if len(rows) == 0 {
		if err := w.Write(documentHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := enc.Encode(addressRow(row)); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush document: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move document into place: %w", err)
	}

	return nil
}

// countRows считает строки данных без заголовка
func countRows(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var count int64
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read document %s: %w", path, err)
		}
		count++
	}

	if count == 0 {
		return 0, nil
	}
	return count - 1, nil
}

// nameEscaper экранирует символы, которые нельзя оставить в имени файла.
// Кодирование обратимо, GetAll возвращает исходные названия.
var nameEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "\\", "%5C", "\x00", "%00")

// escapeName не даёт названиям выйти за пределы каталога документов
func escapeName(name string) string {
	switch name {
	case "":
		return "_"
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return nameEscaper.Replace(name)
}

// unescapeName - обратное к escapeName; чужие имена возвращаются как есть
func unescapeName(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}
