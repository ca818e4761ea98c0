package cms

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/storage"
)

const MaxUploadSize = 10 << 20

var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
	"image/svg+xml":   true,
	"application/pdf": true,
	"video/mp4":       true,
}

type UploadInput struct {
	FileName   string
	Alt        string
	Data       []byte
	UploadedBy int64
}

// Upload stores the file and records it in the media library. The stored
// object is removed again if the row cannot be written.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.CmsMedia, error) {
	if s.media == nil {
		return nil, status.Errorf(codes.FailedPrecondition, "Media storage is not configured")
	}
	if len(in.Data) == 0 {
		return nil, status.Errorf(codes.InvalidArgument, "File is empty")
	}
	if len(in.Data) > MaxUploadSize {
		return nil, status.Errorf(codes.InvalidArgument, "File exceeds %d MB", MaxUploadSize>>20)
	}

	mimeType := http.DetectContentType(in.Data)
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	if strings.HasSuffix(strings.ToLower(in.FileName), ".svg") && strings.HasPrefix(mimeType, "text/") {
		mimeType = "image/svg+xml"
	}
	if !allowedMediaTypes[mimeType] {
		return nil, status.Errorf(codes.InvalidArgument, "File type %s is not allowed", mimeType)
	}

	key := storage.NewObjectKey("cms", in.FileName, s.now())
	url, err := s.media.Put(ctx, key, mimeType, in.Data)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to store file: %v", err)
	}

	record := &models.CmsMedia{
		FileName: in.FileName,
		Alt:      in.Alt,
		MimeType: mimeType,
		Size:     int64(len(in.Data)),
	}
	if in.UploadedBy > 0 {
		record.UploadedByID = &in.UploadedBy
	}
	record.ObjectKey = key
	record.URL = url

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if delErr := s.media.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned media object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, status.Errorf(codes.Internal, "Failed to save media: %v", err)
	}

	s.logger.Info("media uploaded", zap.String("key", key), zap.Int64("size", record.Size))
	return record, nil
}
