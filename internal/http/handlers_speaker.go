package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

const speakerCacheKey = "speakers:visible"

// handleListSpeakers serves the public directory of visible speakers.
// The listing is cached in redis when a client is configured; the
// cache is a read-through with a short TTL, cleared on speaker writes.
func (s *Server) handleListSpeakers(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		if raw, err := s.redis.Get(r.Context(), speakerCacheKey).Bytes(); err == nil {
			var cached []speakerViewPayload
			if json.Unmarshal(raw, &cached) == nil {
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}
	}

	speakers, err := s.store.ListVisibleSpeakers(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	listing := toSpeakerViewPayloads(speakers)

	if s.redis != nil {
		if raw, err := json.Marshal(listing); err == nil {
			if err := s.redis.Set(r.Context(), speakerCacheKey, raw, s.cfg.SpeakerCacheTTL).Err(); err != nil {
				log.Printf("speaker cache set failed: %v", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) invalidateSpeakerCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, speakerCacheKey).Err(); err != nil {
		log.Printf("speaker cache invalidation failed: %v", err)
	}
}
