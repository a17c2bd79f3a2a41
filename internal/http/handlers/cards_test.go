package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeswanth1218/flutter-api/internal/cache"
	"github.com/yeswanth1218/flutter-api/internal/domain/card"
	"github.com/yeswanth1218/flutter-api/internal/extraction"
	"github.com/yeswanth1218/flutter-api/internal/http/handlers"
)

// Fakes for the cards handler's consumer interfaces

type fakeCardsStore struct {
	createFn func(ctx context.Context, c card.Card) error
	listFn   func(ctx context.Context, userID string) ([]card.Card, error)
	updateFn func(ctx context.Context, userID, cardID string, updates []card.FieldUpdate) (card.Card, error)
	deleteFn func(ctx context.Context, cardID string) (string, error)
}

func (f *fakeCardsStore) Create(ctx context.Context, c card.Card) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}

	return nil
}

func (f *fakeCardsStore) ListActiveByUser(ctx context.Context, userID string) ([]card.Card, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}

	return []card.Card{}, nil
}

func (f *fakeCardsStore) UpdateFields(ctx context.Context, userID, cardID string, updates []card.FieldUpdate) (card.Card, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, cardID, updates)
	}

	return card.Card{}, nil
}

func (f *fakeCardsStore) SoftDelete(ctx context.Context, cardID string) (string, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, cardID)
	}

	return "", nil
}

type fakeUserChecker struct {
	existsFn func(ctx context.Context, userID string) (bool, error)
}

func (f *fakeUserChecker) Exists(ctx context.Context, userID string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, userID)
	}

	return true, nil
}

type fakeExtractor struct {
	extractFn func(ctx context.Context, imageJPEG []byte) (card.Extracted, error)
}

func (f *fakeExtractor) Extract(ctx context.Context, imageJPEG []byte) (card.Extracted, error) {
	if f.extractFn != nil {
		return f.extractFn(ctx, imageJPEG)
	}

	return card.Extracted{}, nil
}

func strPtr(s string) *string {
	return &s
}

// tinyPNG returns a real decodable image so the pipeline runs end to end.
func tinyPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer

	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	return buf.Bytes()
}

// multipartUpload builds an extract-card request body. Empty filename
// skips the file part, empty userID skips the form field.
func multipartUpload(t *testing.T, filename string, content []byte, userID string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)

		if err != nil {
			t.Fatalf("create form file: %v", err)
		}

		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}

	if userID != "" {
		if err := mw.WriteField("user_id", userID); err != nil {
			t.Fatalf("write user_id field: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v, body=%s", err, w.Body.String())
	}

	return body
}

// ExtractCard tests

func TestExtractCardHandler(t *testing.T) {
	userID := newUUID()

	tests := []struct {
		name           string
		filename       string
		content        []byte
		userID         string
		checkerSetup   func(*fakeUserChecker)
		extractorSetup func(*fakeExtractor)
		storeSetup     func(*fakeCardsStore)
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "success",
			filename:       "card.png",
			content:        nil, // filled with tinyPNG below
			userID:         userID,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "no_file_part",
			filename:       "",
			userID:         userID,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "No image file provided",
		},
		{
			name:           "bad_extension",
			filename:       "card.txt",
			content:        []byte("hello"),
			userID:         userID,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Invalid file type. Allowed types: png, jpg, jpeg, gif, bmp, webp",
		},
		{
			name:           "no_extension",
			filename:       "card",
			content:        []byte("hello"),
			userID:         userID,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Invalid file type. Allowed types: png, jpg, jpeg, gif, bmp, webp",
		},
		{
			name:           "missing_user_id",
			filename:       "card.png",
			userID:         "",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "user_id is required",
		},
		{
			name:           "malformed_user_id",
			filename:       "card.png",
			userID:         "not-a-uuid",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "user_id must be a valid UUID",
		},
		{
			name:     "user_not_found",
			filename: "card.png",
			userID:   userID,
			checkerSetup: func(f *fakeUserChecker) {
				f.existsFn = func(ctx context.Context, id string) (bool, error) {
					return false, nil
				}
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "User not found",
		},
		{
			name:           "undecodable_image",
			filename:       "card.png",
			content:        []byte("definitely not a png"),
			userID:         userID,
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:     "model_api_error",
			filename: "card.png",
			userID:   userID,
			extractorSetup: func(f *fakeExtractor) {
				f.extractFn = func(ctx context.Context, imageJPEG []byte) (card.Extracted, error) {
					return card.Extracted{}, &extraction.APIError{Cause: errors.New("upstream exploded")}
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "Error processing image with Gemini: upstream exploded",
		},
		{
			name:     "save_error",
			filename: "card.png",
			userID:   userID,
			storeSetup: func(f *fakeCardsStore) {
				f.createFn = func(ctx context.Context, c card.Card) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCardsStore{}
			checker := &fakeUserChecker{}
			extractor := &fakeExtractor{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			if tt.checkerSetup != nil {
				tt.checkerSetup(checker)
			}

			if tt.extractorSetup != nil {
				tt.extractorSetup(extractor)
			}

			h := handlers.NewCardsHandler(store, checker, extractor, nil, nil)
			r := setupRouter(http.MethodPost, "/extract-card", h.ExtractCard)

			content := tt.content

			if tt.filename != "" && content == nil {
				content = tinyPNG(t)
			}

			body, contentType := multipartUpload(t, tt.filename, content, tt.userID)

			req := httptest.NewRequest(http.MethodPost, "/extract-card", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError != "" {
				if got := decodeBody(t, w)["error"]; got != tt.wantError {
					t.Fatalf("got error %q, want %q", got, tt.wantError)
				}
			}
		})
	}
}

func TestExtractCardHandler_PersistsExtractedFields(t *testing.T) {
	userID := newUUID()

	var saved card.Card

	store := &fakeCardsStore{
		createFn: func(ctx context.Context, c card.Card) error {
			saved = c
			return nil
		},
	}

	extractor := &fakeExtractor{
		extractFn: func(ctx context.Context, imageJPEG []byte) (card.Extracted, error) {
			if len(imageJPEG) == 0 {
				return card.Extracted{}, errors.New("no image bytes reached the extractor")
			}

			return card.Extracted{
				Name:    strPtr("Jane Doe"),
				Company: strPtr("Acme Corp"),
				SocialMedia: card.SocialLinks{
					LinkedIn: strPtr("linkedin.com/in/janedoe"),
				},
			}, nil
		},
	}

	h := handlers.NewCardsHandler(store, &fakeUserChecker{}, extractor, nil, nil)
	r := setupRouter(http.MethodPost, "/extract-card", h.ExtractCard)

	body, contentType := multipartUpload(t, "card.png", tinyPNG(t), userID)

	req := httptest.NewRequest(http.MethodPost, "/extract-card", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	if saved.UserID != userID {
		t.Fatalf("saved card owner %q, want %q", saved.UserID, userID)
	}

	if saved.Name == nil || *saved.Name != "Jane Doe" {
		t.Fatalf("saved card name %v, want Jane Doe", saved.Name)
	}

	if saved.LinkedIn == nil || *saved.LinkedIn != "linkedin.com/in/janedoe" {
		t.Fatalf("saved card linkedin %v, want the extracted handle", saved.LinkedIn)
	}

	if saved.Status != card.StatusActive {
		t.Fatalf("saved card status %d, want %d", saved.Status, card.StatusActive)
	}

	respBody := decodeBody(t, w)

	if respBody["card_id"] != saved.CardID {
		t.Fatalf("response card_id %v, want %q", respBody["card_id"], saved.CardID)
	}

	data, _ := respBody["data"].(map[string]any)

	if data == nil || data["name"] != "Jane Doe" {
		t.Fatalf("response data missing extracted name, body=%s", w.Body.String())
	}
}

func TestExtractCardHandler_ParseFailureSurfacesRawResponse(t *testing.T) {
	userID := newUUID()

	extractor := &fakeExtractor{
		extractFn: func(ctx context.Context, imageJPEG []byte) (card.Extracted, error) {
			return card.Extracted{}, &extraction.ParseError{Raw: "I am not JSON, sorry"}
		},
	}

	created := false

	store := &fakeCardsStore{
		createFn: func(ctx context.Context, c card.Card) error {
			created = true
			return nil
		},
	}

	h := handlers.NewCardsHandler(store, &fakeUserChecker{}, extractor, nil, nil)
	r := setupRouter(http.MethodPost, "/extract-card", h.ExtractCard)

	body, contentType := multipartUpload(t, "card.png", tinyPNG(t), userID)

	req := httptest.NewRequest(http.MethodPost, "/extract-card", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusInternalServerError, w.Body.String())
	}

	respBody := decodeBody(t, w)

	if respBody["error"] != "Failed to parse JSON response" {
		t.Fatalf("got error %q, want parse failure message", respBody["error"])
	}

	if respBody["raw_response"] != "I am not JSON, sorry" {
		t.Fatalf("raw_response %v, want the model text", respBody["raw_response"])
	}

	if created {
		t.Fatalf("card must not be saved when parsing fails")
	}
}

// ListCards tests

func TestListCardsHandler(t *testing.T) {
	userID := newUUID()
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		checkerSetup   func(*fakeUserChecker)
		storeSetup     func(*fakeCardsStore)
		wantStatusCode int
		wantTotal      int
	}{
		{
			name: "success",
			url:  "/cards/" + userID,
			storeSetup: func(f *fakeCardsStore) {
				f.listFn = func(ctx context.Context, id string) ([]card.Card, error) {
					return []card.Card{
						{CardID: newUUID(), UserID: id, Name: strPtr("Jane"), Status: card.StatusActive, CreatedAt: now, UpdatedAt: now, Tags: []string{}},
						{CardID: newUUID(), UserID: id, Name: strPtr("John"), Status: card.StatusActive, CreatedAt: now, UpdatedAt: now, Tags: []string{}},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantTotal:      2,
		},
		{
			name:           "empty_list",
			url:            "/cards/" + userID,
			wantStatusCode: http.StatusOK,
			wantTotal:      0,
		},
		{
			name:           "malformed_user_id",
			url:            "/cards/not-a-uuid",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "user_not_found",
			url:  "/cards/" + userID,
			checkerSetup: func(f *fakeUserChecker) {
				f.existsFn = func(ctx context.Context, id string) (bool, error) {
					return false, nil
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "store_error",
			url:  "/cards/" + userID,
			storeSetup: func(f *fakeCardsStore) {
				f.listFn = func(ctx context.Context, id string) ([]card.Card, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCardsStore{}
			checker := &fakeUserChecker{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			if tt.checkerSetup != nil {
				tt.checkerSetup(checker)
			}

			h := handlers.NewCardsHandler(store, checker, &fakeExtractor{}, nil, nil)
			r := setupRouter(http.MethodGet, "/cards/:user_id", h.ListCards)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			respBody := decodeBody(t, w)

			if got := int(respBody["total_cards"].(float64)); got != tt.wantTotal {
				t.Fatalf("got total_cards %d, want %d", got, tt.wantTotal)
			}

			if w.Header().Get("ETag") == "" {
				t.Fatalf("expected an ETag header on the listing")
			}
		})
	}
}

func TestListCardsHandler_CacheHit(t *testing.T) {
	userID := newUUID()

	calls := 0

	store := &fakeCardsStore{
		listFn: func(ctx context.Context, id string) ([]card.Card, error) {
			calls++
			return []card.Card{{CardID: newUUID(), UserID: id, Status: card.StatusActive, Tags: []string{}}}, nil
		},
	}

	c := cache.New(30 * time.Second)

	h := handlers.NewCardsHandler(store, &fakeUserChecker{}, &fakeExtractor{}, nil, c)
	r := setupRouter(http.MethodGet, "/cards/:user_id", h.ListCards)

	// First request: cache miss -> store called
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/cards/"+userID, nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	// Second request: cache hit -> store should NOT be called again
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/cards/"+userID, nil))

	if w2.Code != http.StatusOK {
		t.Fatalf("second call got %d body=%s", w2.Code, w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected store calls=1, got %d", calls)
	}
}

func TestListCardsHandler_ETagNotModified(t *testing.T) {
	userID := newUUID()

	store := &fakeCardsStore{
		listFn: func(ctx context.Context, id string) ([]card.Card, error) {
			return []card.Card{{CardID: "fixed-id", UserID: id, Status: card.StatusActive, Tags: []string{}}}, nil
		},
	}

	c := cache.New(30 * time.Second)

	h := handlers.NewCardsHandler(store, &fakeUserChecker{}, &fakeExtractor{}, nil, c)
	r := setupRouter(http.MethodGet, "/cards/:user_id", h.ListCards)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/cards/"+userID, nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	etag := w1.Header().Get("ETag")

	if etag == "" {
		t.Fatalf("expected ETag header in first response")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/cards/"+userID, nil)
	req2.Header.Set("If-None-Match", etag)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call got %d, want %d, body=%s", w2.Code, http.StatusNotModified, w2.Body.String())
	}

	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}
}

// UpdateCard tests

func TestUpdateCardHandler(t *testing.T) {
	userID := newUUID()
	cardID := newUUID()

	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeCardsStore)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "success",
			body: `{"user_id": "` + userID + `", "card_id": "` + cardID + `", "updates": {"name": "New Name"}}`,
			storeSetup: func(f *fakeCardsStore) {
				f.updateFn = func(ctx context.Context, uid, cid string, updates []card.FieldUpdate) (card.Card, error) {
					return card.Card{CardID: cid, UserID: uid, Name: strPtr("New Name"), Tags: []string{}}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_updates",
			body:           `{"user_id": "` + userID + `", "card_id": "` + cardID + `"}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "updates is required",
		},
		{
			name:           "empty_updates",
			body:           `{"user_id": "` + userID + `", "card_id": "` + cardID + `", "updates": {}}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "No fields to update",
		},
		{
			name:           "disallowed_key",
			body:           `{"user_id": "` + userID + `", "card_id": "` + cardID + `", "updates": {"card_id": "` + newUUID() + `"}}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Field 'card_id' cannot be updated",
		},
		{
			name:           "disallowed_status_key",
			body:           `{"user_id": "` + userID + `", "card_id": "` + cardID + `", "updates": {"status": 0}}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Field 'status' cannot be updated",
		},
		{
			name:           "wrong_value_type",
			body:           `{"user_id": "` + userID + `", "card_id": "` + cardID + `", "updates": {"name": 42}}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "malformed_user_id",
			body:           `{"user_id": "nope", "card_id": "` + cardID + `", "updates": {"name": "x"}}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "user_id must be a valid UUID",
		},
		{
			name:           "malformed_card_id",
			body:           `{"user_id": "` + userID + `", "card_id": "nope", "updates": {"name": "x"}}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "card_id must be a valid UUID",
		},
		{
			name: "card_not_found",
			body: `{"user_id": "` + userID + `", "card_id": "` + cardID + `", "updates": {"name": "x"}}`,
			storeSetup: func(f *fakeCardsStore) {
				f.updateFn = func(ctx context.Context, uid, cid string, updates []card.FieldUpdate) (card.Card, error) {
					return card.Card{}, card.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "Card not found",
		},
		{
			name: "store_error",
			body: `{"user_id": "` + userID + `", "card_id": "` + cardID + `", "updates": {"name": "x"}}`,
			storeSetup: func(f *fakeCardsStore) {
				f.updateFn = func(ctx context.Context, uid, cid string, updates []card.FieldUpdate) (card.Card, error) {
					return card.Card{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCardsStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewCardsHandler(store, &fakeUserChecker{}, &fakeExtractor{}, nil, nil)
			r := setupRouter(http.MethodPut, "/update_card_details", h.UpdateCard)

			req := httptest.NewRequest(http.MethodPut, "/update_card_details", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError != "" {
				if got := decodeBody(t, w)["error"]; got != tt.wantError {
					t.Fatalf("got error %q, want %q", got, tt.wantError)
				}
			}
		})
	}
}

func TestUpdateCardHandler_TypedSlotsReachTheStore(t *testing.T) {
	userID := newUUID()
	cardID := newUUID()

	var gotUpdates []card.FieldUpdate

	store := &fakeCardsStore{
		updateFn: func(ctx context.Context, uid, cid string, updates []card.FieldUpdate) (card.Card, error) {
			gotUpdates = updates
			return card.Card{CardID: cid, UserID: uid, Tags: []string{}}, nil
		},
	}

	h := handlers.NewCardsHandler(store, &fakeUserChecker{}, &fakeExtractor{}, nil, nil)
	r := setupRouter(http.MethodPut, "/update_card_details", h.UpdateCard)

	body := `{"user_id": "` + userID + `", "card_id": "` + cardID + `",
		"updates": {"name": "Jane", "company": null, "tags": ["vip", "sales"]}}`

	req := httptest.NewRequest(http.MethodPut, "/update_card_details", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	// keys arrive sorted: company, name, tags
	if len(gotUpdates) != 3 {
		t.Fatalf("got %d updates, want 3", len(gotUpdates))
	}

	if gotUpdates[0].Column != "company" || gotUpdates[0].Value != (*string)(nil) {
		t.Fatalf("company slot = %+v, want nil-valued company", gotUpdates[0])
	}

	if gotUpdates[1].Column != "name" {
		t.Fatalf("second slot column %q, want name", gotUpdates[1].Column)
	}

	name, ok := gotUpdates[1].Value.(*string)

	if !ok || name == nil || *name != "Jane" {
		t.Fatalf("name slot value %+v, want Jane", gotUpdates[1].Value)
	}

	tags, ok := gotUpdates[2].Value.([]string)

	if !ok || len(tags) != 2 || tags[0] != "vip" {
		t.Fatalf("tags slot value %+v, want [vip sales]", gotUpdates[2].Value)
	}

	respBody := decodeBody(t, w)

	fields, _ := respBody["updated_fields"].([]any)

	if len(fields) != 3 || fields[0] != "company" || fields[1] != "name" || fields[2] != "tags" {
		t.Fatalf("updated_fields %v, want [company name tags]", respBody["updated_fields"])
	}
}

// DeleteCard tests

func TestDeleteCardHandler(t *testing.T) {
	cardID := newUUID()
	ownerID := newUUID()

	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeCardsStore)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "success",
			body: `{"card_id": "` + cardID + `"}`,
			storeSetup: func(f *fakeCardsStore) {
				f.deleteFn = func(ctx context.Context, id string) (string, error) {
					return ownerID, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_card_id",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "card_id is required",
		},
		{
			name:           "malformed_card_id",
			body:           `{"card_id": "nope"}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "card_id must be a valid UUID",
		},
		{
			name: "card_not_found",
			body: `{"card_id": "` + cardID + `"}`,
			storeSetup: func(f *fakeCardsStore) {
				f.deleteFn = func(ctx context.Context, id string) (string, error) {
					return "", card.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "Card not found",
		},
		{
			name: "already_deleted",
			body: `{"card_id": "` + cardID + `"}`,
			storeSetup: func(f *fakeCardsStore) {
				f.deleteFn = func(ctx context.Context, id string) (string, error) {
					return "", card.ErrAlreadyDeleted
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Card is already deleted",
		},
		{
			name: "store_error",
			body: `{"card_id": "` + cardID + `"}`,
			storeSetup: func(f *fakeCardsStore) {
				f.deleteFn = func(ctx context.Context, id string) (string, error) {
					return "", errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCardsStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewCardsHandler(store, &fakeUserChecker{}, &fakeExtractor{}, nil, nil)
			r := setupRouter(http.MethodPost, "/delete_card", h.DeleteCard)

			w := postJSON(r, "/delete_card", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError != "" {
				if got := decodeBody(t, w)["error"]; got != tt.wantError {
					t.Fatalf("got error %q, want %q", got, tt.wantError)
				}
			}

			if tt.wantStatusCode == http.StatusOK {
				respBody := decodeBody(t, w)

				if respBody["card_id"] != cardID {
					t.Fatalf("got card_id %v, want %q", respBody["card_id"], cardID)
				}

				if respBody["success"] != true {
					t.Fatalf("expected success true, body=%s", w.Body.String())
				}
			}
		})
	}
}

func TestDeleteCardHandler_InvalidatesOwnersListing(t *testing.T) {
	userID := newUUID()
	cardID := newUUID()

	listCalls := 0

	store := &fakeCardsStore{
		listFn: func(ctx context.Context, id string) ([]card.Card, error) {
			listCalls++
			return []card.Card{}, nil
		},
		deleteFn: func(ctx context.Context, id string) (string, error) {
			return userID, nil
		},
	}

	c := cache.New(30 * time.Second)

	h := handlers.NewCardsHandler(store, &fakeUserChecker{}, &fakeExtractor{}, nil, c)

	r := gin.New()
	r.GET("/cards/:user_id", h.ListCards)
	r.POST("/delete_card", h.DeleteCard)

	// prime the cache
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/cards/"+userID, nil))

	if w1.Code != http.StatusOK || listCalls != 1 {
		t.Fatalf("prime failed: status %d calls %d", w1.Code, listCalls)
	}

	// delete flushes the owner's cached listing
	delReq := httptest.NewRequest(http.MethodPost, "/delete_card", strings.NewReader(`{"card_id": "`+cardID+`"}`))
	delReq.Header.Set("Content-Type", "application/json")

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, delReq)

	if w2.Code != http.StatusOK {
		t.Fatalf("delete got %d body=%s", w2.Code, w2.Body.String())
	}

	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "/cards/"+userID, nil))

	if w3.Code != http.StatusOK {
		t.Fatalf("relist got %d body=%s", w3.Code, w3.Body.String())
	}

	if listCalls != 2 {
		t.Fatalf("expected store to be re-queried after delete, calls=%d", listCalls)
	}
}
