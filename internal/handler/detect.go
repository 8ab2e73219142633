package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fooddetect/internal/logger"
	"fooddetect/internal/models"
	"fooddetect/internal/service"
)

// imageField is the multipart field carrying the upload.
const imageField = "image"

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 1 << 20

// AllowedExtensions lists the accepted upload extensions, lower case.
var AllowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// ImageProcessor turns an accepted upload into aggregated items.
type ImageProcessor interface {
	Process(ctx context.Context, upload service.Upload) ([]models.AggregatedItem, error)
}

type detectResponse struct {
	Success       bool                    `json:"success"`
	DetectedItems []models.AggregatedItem `json:"detectedItems"`
}

// AllowedFile reports whether filename has one of the AllowedExtensions
// after its last dot.
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(filename[i+1:])]
}

// DetectHandler handles POST /api/detect: validates the multipart upload,
// runs detection and returns the aggregated items.
func DetectHandler(processor ImageProcessor, maxUploadBytes int64, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, logger, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if r.ContentLength > maxUploadBytes {
			respondError(w, logger, http.StatusRequestEntityTooLarge, uploadErrorMessage(service.ErrFileTooLarge))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		upload, cleanup, err := readUpload(r)
		if err != nil {
			var perr *service.ProcessingError
			if errors.As(err, &perr) {
				respondError(w, logger, http.StatusInternalServerError, "Error processing image: "+perr.Err.Error())
				return
			}
			status := http.StatusBadRequest
			if errors.Is(err, service.ErrFileTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			logger.Warning("Rejected upload from %s: %v", r.RemoteAddr, err)
			respondError(w, logger, status, uploadErrorMessage(err))
			return
		}
		defer cleanup()

		items, err := processor.Process(r.Context(), upload)
		if err != nil {
			respondError(w, logger, http.StatusInternalServerError, "Error processing image: "+processingDetails(err))
			return
		}

		respondJSON(w, logger, http.StatusOK, detectResponse{Success: true, DetectedItems: items})
	}
}

// readUpload parses the multipart form and validates the image part.
func readUpload(r *http.Request) (service.Upload, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return service.Upload{}, noop, service.ErrFileTooLarge
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return service.Upload{}, noop, service.ErrNoFileProvided
		default:
			return service.Upload{}, noop, &service.ProcessingError{Op: "parse form", Err: err}
		}
	}
	cleanupForm := func() { r.MultipartForm.RemoveAll() }

	file, header, err := r.FormFile(imageField)
	if err != nil {
		cleanupForm()
		// a part sent with an empty filename is stored as a plain value
		if _, ok := r.MultipartForm.Value[imageField]; ok {
			return service.Upload{}, noop, service.ErrEmptyFilename
		}
		if errors.Is(err, http.ErrMissingFile) {
			return service.Upload{}, noop, service.ErrNoFileProvided
		}
		return service.Upload{}, noop, &service.ProcessingError{Op: "open upload", Err: err}
	}

	if header.Filename == "" {
		file.Close()
		cleanupForm()
		return service.Upload{}, noop, service.ErrEmptyFilename
	}
	if !AllowedFile(header.Filename) {
		file.Close()
		cleanupForm()
		return service.Upload{}, noop, service.ErrInvalidFileType
	}

	cleanup := func() {
		file.Close()
		cleanupForm()
	}
	return service.Upload{Filename: header.Filename, Content: file}, cleanup, nil
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNoFileProvided):
		return "No image file provided"
	case errors.Is(err, service.ErrEmptyFilename):
		return "No file selected"
	case errors.Is(err, service.ErrInvalidFileType):
		return "Invalid file type"
	case errors.Is(err, service.ErrFileTooLarge):
		return "File too large"
	default:
		return err.Error()
	}
}

// processingDetails returns the innermost useful message of a processing failure.
func processingDetails(err error) string {
	var perr *service.ProcessingError
	if errors.As(err, &perr) {
		return perr.Err.Error()
	}
	return err.Error()
}
