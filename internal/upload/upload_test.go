package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestService(t *testing.T, maxBytes int64) *Service {
	t.Helper()
	logger := zerolog.Nop()
	svc, err := NewService(t.TempDir(), maxBytes, "http://localhost:8080", &logger)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	if err != nil {
		t.Fatalf("parse form file: %v", err)
	}
	return file, header
}

func TestSaveAllowedFile(t *testing.T) {
	svc := newTestService(t, 1<<20)

	file, header := multipartFile(t, "photo.PNG", []byte("pixels"))
	defer file.Close()

	result, err := svc.Save(file, header)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(result.URL, "http://localhost:8080/uploads/") {
		t.Fatalf("unexpected url: %s", result.URL)
	}
	if !strings.HasSuffix(result.URL, ".png") {
		t.Fatalf("extension should be normalized lowercase: %s", result.URL)
	}
	if strings.Contains(result.URL, "photo") {
		t.Fatalf("original filename must not leak into storage: %s", result.URL)
	}
	if result.SizeBytes != int64(len("pixels")) {
		t.Fatalf("unexpected size: %d", result.SizeBytes)
	}

	stored := filepath.Join(svc.Dir(), filepath.Base(result.URL))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	svc := newTestService(t, 1<<20)

	file, header := multipartFile(t, "script.sh", []byte("#!/bin/sh"))
	defer file.Close()

	if _, err := svc.Save(file, header); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	svc := newTestService(t, 8)

	file, header := multipartFile(t, "big.txt", []byte("way more than eight bytes"))
	defer file.Close()

	if _, err := svc.Save(file, header); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
