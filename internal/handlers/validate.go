package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить id %q", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id должен быть положительным")
	}
	return id, nil
}

// optionalInt - пустой параметр даёт 0
func optionalInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("параметр %s должен быть числом", name)
	}
	return v, nil
}

// userParam принимает и userId, и user_id
func userParam(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("userId"); v != "" {
		return v
	}
	return q.Get("user_id")
}
