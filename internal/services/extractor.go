package services

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"appreview/roster-evaluator/internal/models"
)

// ContentExtractor runs the two extraction lanes for one candidate:
// document bytes to text and media bytes to a transcript. The lanes are
// independent; either may fail without affecting the other, and a missing
// locator just leaves that lane absent.
type ContentExtractor interface {
	Extract(ctx context.Context, candidate *models.CandidateRecord) *models.ExtractionResult
}

type contentExtractor struct {
	store       FileStore
	parser      DocumentParser
	transcriber Transcriber
	laneTimeout time.Duration
	logger      *zap.Logger
}

func NewContentExtractor(
	store FileStore,
	parser DocumentParser,
	transcriber Transcriber,
	laneTimeout time.Duration,
	logger *zap.Logger,
) ContentExtractor {
	return &contentExtractor{
		store:       store,
		parser:      parser,
		transcriber: transcriber,
		laneTimeout: laneTimeout,
		logger:      logger,
	}
}

func (x *contentExtractor) Extract(ctx context.Context, candidate *models.CandidateRecord) *models.ExtractionResult {
	result := &models.ExtractionResult{}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	recordError := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Errors = append(result.Errors, err.Error())
	}

	if candidate.DocumentURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()

			laneCtx, cancel := context.WithTimeout(ctx, x.laneTimeout)
			defer cancel()

			data, err := x.store.Fetch(laneCtx, candidate.DocumentURL)
			if err != nil {
				recordError(&FetchError{Lane: LaneDocument, Err: err})
				return
			}

			text, err := x.parser.ExtractText(data)
			if err != nil {
				recordError(&ExtractionError{Lane: LaneDocument, Err: err})
				return
			}

			mu.Lock()
			result.DocumentText = text
			mu.Unlock()
		}()
	}

	if candidate.MediaURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()

			laneCtx, cancel := context.WithTimeout(ctx, x.laneTimeout)
			defer cancel()

			data, err := x.store.Fetch(laneCtx, candidate.MediaURL)
			if err != nil {
				recordError(&FetchError{Lane: LaneMedia, Err: err})
				return
			}

			transcript, err := x.transcriber.Transcribe(laneCtx, data, mediaMIMEType(candidate.MediaURL))
			if err != nil {
				recordError(&ExtractionError{Lane: LaneMedia, Err: err})
				return
			}

			mu.Lock()
			result.MediaTranscript = transcript
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(result.Errors) > 0 {
		x.logger.Debug("extraction finished with errors",
			zap.String("email", candidate.Email),
			zap.Strings("errors", result.Errors))
	}

	return result
}

// mediaMIMEType guesses the media type from the locator's extension.
// The file store does not expose content types, so mp4 is the default.
func mediaMIMEType(locator string) string {
	switch strings.ToLower(path.Ext(locator)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "video/mp4"
	}
}
