package service

import (
	"alcyxob/trainer-marketplace/internal/storage"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResumeUpload is an uploaded resume file as received from the client.
type ResumeUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// resumeTypes maps accepted extensions to the sniffed content types they may carry.
// Legacy .doc files sniff as OLE containers; .docx as zip archives.
var resumeTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// stagedFile is an uploaded object that is deleted again unless committed.
type stagedFile struct {
	store     storage.FileStorage
	key       string
	logger    *zap.Logger
	committed bool
}

func (f *stagedFile) commit() {
	if f != nil {
		f.committed = true
	}
}

// release removes the object unless it was committed. Failures are logged only.
func (f *stagedFile) release(ctx context.Context) {
	if f == nil || f.committed {
		return
	}
	if err := f.store.Delete(context.WithoutCancel(ctx), f.key); err != nil {
		f.logger.Warn("failed to remove staged upload", zap.String("key", f.key), zap.Error(err))
		return
	}
	f.logger.Debug("removed staged upload", zap.String("key", f.key))
}

// stageResume validates the upload and stores it under resumes/<uuid>.<ext>.
func stageResume(ctx context.Context, store storage.FileStorage, logger *zap.Logger, up *ResumeUpload, maxSize int64) (*stagedFile, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	allowed, ok := resumeTypes[ext]
	if !ok {
		return nil, validationError("resume must be a .pdf, .doc or .docx file")
	}
	if up.Size > maxSize {
		return nil, validationError("resume exceeds the %d byte limit", maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(up.Content, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, validationError("resume exceeds the %d byte limit", maxSize)
	}

	detected := mimetype.Detect(data)
	if !mimeAllowed(detected, allowed) {
		return nil, validationError("resume content (%s) does not match its %s extension", detected.String(), ext)
	}

	key := "resumes/" + uuid.NewString() + ext
	if err := store.Save(ctx, key, bytes.NewReader(data), detected.String()); err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}
	return &stagedFile{store: store, key: key, logger: logger}, nil
}

func mimeAllowed(m *mimetype.MIME, allowed []string) bool {
	for ; m != nil; m = m.Parent() {
		for _, a := range allowed {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}
