package services

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driving"
	"github.com/sdmx-tools/sdmx-cli/internal/logger"
)

// Ensure MessageService implements the interface.
var _ driving.MessageService = (*MessageService)(nil)

// MessageService selects a reader for a raw message and decodes it.
type MessageService struct {
	readers []driven.Reader
}

// NewMessageService creates a message service over the given readers.
func NewMessageService(readers ...driven.Reader) *MessageService {
	s := &MessageService{}
	for _, r := range readers {
		s.Register(r)
	}
	return s
}

// Register adds a reader, keeping the list sorted by descending
// priority.
func (s *MessageService) Register(r driven.Reader) {
	s.readers = append(s.readers, r)
	sort.SliceStable(s.readers, func(i, j int) bool {
		return s.readers[i].Priority() > s.readers[j].Priority()
	})
}

// Readers returns the registered readers in priority order.
func (s *MessageService) Readers() []driven.Reader {
	out := make([]driven.Reader, len(s.readers))
	copy(out, s.readers)
	return out
}

// Parse decodes a raw message with the highest-priority reader claiming
// its content type, falling back to the file extension of the URL when
// the content type is missing or unknown.
func (s *MessageService) Parse(ctx context.Context, raw *driven.RawMessage, opts driven.ReadOptions) (*domain.Message, error) {
	if raw == nil || len(raw.Body) == 0 {
		return nil, errors.Wrap(domain.ErrMalformedDocument, "empty message body")
	}

	reader := s.readerFor(raw)
	if reader == nil {
		return nil, errors.Wrapf(domain.ErrMalformedDocument,
			"no reader for content type %q", raw.ContentType)
	}

	logger.Debug("parsing message", "contentType", raw.ContentType, "bytes", len(raw.Body))
	msg, err := reader.Read(ctx, raw, opts)
	if err != nil {
		return nil, err
	}

	for _, w := range msg.Warnings {
		logger.Warn("unresolved reference", "ref", w.Ref.String())
	}
	if msg.Footer != nil {
		if u := msg.Footer.RetrievalURL(); u != "" {
			logger.Info("footer carries retrieval link", "url", u)
		}
	}
	return msg, nil
}

// readerFor picks the best reader for the raw message.
func (s *MessageService) readerFor(raw *driven.RawMessage) driven.Reader {
	mediaType := raw.ContentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	for _, r := range s.readers {
		for _, ct := range r.SupportedContentTypes() {
			if mediaType == ct {
				return r
			}
		}
	}

	// Fall back to the file extension of the source URL.
	ext := strings.ToLower(path.Ext(raw.URL))
	if ext != "" {
		for _, r := range s.readers {
			for _, e := range r.SupportedExtensions() {
				if ext == e {
					return r
				}
			}
		}
	}

	// Last resort: sniff the payload.
	trimmed := strings.TrimSpace(string(raw.Body[:min(64, len(raw.Body))]))
	switch {
	case strings.HasPrefix(trimmed, "<"):
		return s.byContentType("application/xml")
	case strings.HasPrefix(trimmed, "{"):
		return s.byContentType("application/json")
	}
	return nil
}

func (s *MessageService) byContentType(ct string) driven.Reader {
	for _, r := range s.readers {
		for _, c := range r.SupportedContentTypes() {
			if c == ct {
				return r
			}
		}
	}
	return nil
}
