package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/assessment"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

const maxUploadBytes = 32 << 20

// POST /questions
// Accepts JSON, or multipart/form-data with an optional "media_file" part.
func CreateQuestionHandler(bank *assessment.Bank, bs storage.BlobStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			in  assessment.NewQuestion
			err error
		)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			in, err = questionFromForm(r, bs)
			if err != nil {
				writeError(w, log, err)
				return
			}
		} else if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		q, err := bank.CreateQuestion(r.Context(), actorFrom(r), in)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func questionFromForm(r *http.Request, bs storage.BlobStore) (assessment.NewQuestion, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return assessment.NewQuestion{}, fmt.Errorf("%w: %v", assessment.ErrValidation, err)
	}
	in := assessment.NewQuestion{
		Text:       r.FormValue("text"),
		Difficulty: assessment.Difficulty(r.FormValue("difficulty")),
		Subject:    r.FormValue("subject"),
		Grade:      r.FormValue("grade"),
		Topic:      r.FormValue("topic"),
		IsPassage:  parseBoolDefault(r.FormValue("is_passage"), false),
	}
	if v := strings.TrimSpace(r.FormValue("passage_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, fmt.Errorf("%w: passage_id %q", assessment.ErrValidation, v)
		}
		in.PassageID = &id
	}

	f, hdr, err := r.FormFile("media_file")
	if err == http.ErrMissingFile {
		return in, nil
	}
	if err != nil {
		return in, fmt.Errorf("%w: media_file: %v", assessment.ErrValidation, err)
	}
	defer f.Close()
	ref, err := storage.SaveMedia(r.Context(), bs, hdr.Filename, f)
	if err != nil {
		return in, err
	}
	in.MediaRef = ref
	return in, nil
}

// GET /questions
func ListQuestionsHandler(bank *assessment.Bank, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := bank.ListByTeacher(r.Context(), actorFrom(r).ID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

// GET /questions/passages
func ListPassagesHandler(bank *assessment.Bank, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := bank.ListPassagesByTeacher(r.Context(), actorFrom(r).ID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
