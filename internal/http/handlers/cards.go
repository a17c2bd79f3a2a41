package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeswanth1218/flutter-api/internal/cache"
	"github.com/yeswanth1218/flutter-api/internal/config"
	"github.com/yeswanth1218/flutter-api/internal/domain/card"
	"github.com/yeswanth1218/flutter-api/internal/extraction"
	"github.com/yeswanth1218/flutter-api/internal/imaging"
	"github.com/yeswanth1218/flutter-api/internal/observability"
	"github.com/yeswanth1218/flutter-api/internal/utils"
)

type CardsStore interface {
	Create(ctx context.Context, c card.Card) error
	ListActiveByUser(ctx context.Context, userID string) ([]card.Card, error)
	UpdateFields(ctx context.Context, userID, cardID string, updates []card.FieldUpdate) (card.Card, error)
	SoftDelete(ctx context.Context, cardID string) (string, error)
}

type UserChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type Extractor interface {
	Extract(ctx context.Context, imageJPEG []byte) (card.Extracted, error)
}

type CardsHandler struct {
	cards     CardsStore
	users     UserChecker
	extractor Extractor
	prom      *observability.Prom
	cache     *cache.Cache
}

func NewCardsHandler(cards CardsStore, users UserChecker, extractor Extractor, prom *observability.Prom, listCache *cache.Cache) *CardsHandler {
	return &CardsHandler{
		cards:     cards,
		users:     users,
		extractor: extractor,
		prom:      prom,
		cache:     listCache,
	}
}

func cardsCacheKey(userID string) string {
	return "cards:" + userID
}

// ExtractCard takes a multipart card image, runs it through the model and
// persists the result as a new card for the given user.
func (h *CardsHandler) ExtractCard(ctx *gin.Context) {
	file, err := ctx.FormFile("image")

	if err != nil {
		var maxErr *http.MaxBytesError

		if errors.As(err, &maxErr) {
			RespondError(ctx, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB")
			return
		}

		RespondBadRequest(ctx, "No image file provided")
		return
	}

	if file.Filename == "" {
		RespondBadRequest(ctx, "No image file selected")
		return
	}

	if !imaging.AllowedFile(file.Filename) {
		RespondBadRequest(ctx, "Invalid file type. Allowed types: png, jpg, jpeg, gif, bmp, webp")
		return
	}

	userID := ctx.PostForm("user_id")

	if userID == "" {
		RespondBadRequest(ctx, "user_id is required")
		return
	}

	if !utils.IsUUID(userID) {
		RespondBadRequest(ctx, "user_id must be a valid UUID")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	exists, err := h.users.Exists(cctx, userID)

	cancel()

	if err != nil {
		RespondInternal(ctx, "Could not verify user")
		return
	}

	if !exists {
		RespondNotFound(ctx, "User not found")
		return
	}

	src, err := file.Open()

	if err != nil {
		RespondInternal(ctx, "Error processing image: "+err.Error())
		return
	}

	defer src.Close()

	data, err := io.ReadAll(src)

	if err != nil {
		RespondInternal(ctx, "Error processing image: "+err.Error())
		return
	}

	if len(data) > imaging.MaxUploadBytes {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB")
		return
	}

	jpegData, err := imaging.PrepareJPEG(data)

	if err != nil {
		RespondInternal(ctx, "Error processing image: "+err.Error())
		return
	}

	// the model call rides the request context, no extra deadline
	start := time.Now()

	extracted, err := h.extractor.Extract(ctx.Request.Context(), jpegData)

	elapsed := time.Since(start)

	if err != nil {
		var parseErr *extraction.ParseError

		if errors.As(err, &parseErr) {
			h.observeExtraction("parse_error", elapsed)

			// surface the raw model text so the client can see what came back
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":        "Failed to parse JSON response",
				"raw_response": parseErr.Raw,
			})
			return
		}

		h.observeExtraction("api_error", elapsed)
		RespondInternal(ctx, "Error processing image with Gemini: "+err.Error())
		return
	}

	h.observeExtraction("ok", elapsed)

	newCard := card.NewFromExtraction(userID, extracted)

	sctx, cancelSave := config.WithTimeout(3 * time.Second)

	defer cancelSave()

	if err := h.cards.Create(sctx, newCard); err != nil {
		RespondInternal(ctx, "Could not save card")
		return
	}

	h.invalidateList(userID)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Business card processed successfully",
		"card_id": newCard.CardID,
		"user_id": userID,
		"data":    extracted,
	})
}

// ListCards returns the user's active cards, newest first.
func (h *CardsHandler) ListCards(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	if !utils.IsUUID(userID) {
		RespondBadRequest(ctx, "user_id must be a valid UUID")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	exists, err := h.users.Exists(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list cards")
		return
	}

	if !exists {
		RespondNotFound(ctx, "User not found")
		return
	}

	if h.cache != nil {
		if cached, ok := h.cache.Get(cardsCacheKey(userID)); ok {
			if cards, ok := cached.([]card.Card); ok {
				respondCards(ctx, userID, cards)
				return
			}
		}
	}

	cards, err := h.cards.ListActiveByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list cards")
		return
	}

	if h.cache != nil {
		h.cache.Set(cardsCacheKey(userID), cards)
	}

	respondCards(ctx, userID, cards)
}

func respondCards(ctx *gin.Context, userID string, cards []card.Card) {
	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"success":     true,
		"user_id":     userID,
		"cards":       cards,
		"total_cards": len(cards),
	})
}

// UpdateCard applies an allow-listed set of field changes to one card.
func (h *CardsHandler) UpdateCard(ctx *gin.Context) {
	var req card.UpdateCardRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !utils.IsUUID(req.UserID) {
		RespondBadRequest(ctx, "user_id must be a valid UUID")
		return
	}

	if !utils.IsUUID(req.CardID) {
		RespondBadRequest(ctx, "card_id must be a valid UUID")
		return
	}

	updates, err := card.BuildUpdates(req.Updates)

	if err != nil {
		var disallowed *card.DisallowedFieldError

		switch {
		case errors.Is(err, card.ErrNoUpdates):
			RespondBadRequest(ctx, "No fields to update")
		case errors.As(err, &disallowed):
			RespondBadRequest(ctx, "Field '"+disallowed.Field+"' cannot be updated")
		default:
			RespondBadRequest(ctx, err.Error())
		}

		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.cards.UpdateFields(cctx, req.UserID, req.CardID, updates)

	if err != nil {
		if errors.Is(err, card.ErrNotFound) {
			RespondNotFound(ctx, "Card not found")
			return
		}

		RespondInternal(ctx, "Could not update card")
		return
	}

	h.invalidateList(req.UserID)

	updatedFields := make([]string, 0, len(updates))

	for _, u := range updates {
		updatedFields = append(updatedFields, u.Column)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":        true,
		"updated_fields": updatedFields,
		"card":           updated,
	})
}

// DeleteCard soft-deletes one card by flipping its status.
func (h *CardsHandler) DeleteCard(ctx *gin.Context) {
	var req card.DeleteCardRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !utils.IsUUID(req.CardID) {
		RespondBadRequest(ctx, "card_id must be a valid UUID")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	ownerID, err := h.cards.SoftDelete(cctx, req.CardID)

	if err != nil {
		switch {
		case errors.Is(err, card.ErrNotFound):
			RespondNotFound(ctx, "Card not found")
		case errors.Is(err, card.ErrAlreadyDeleted):
			RespondBadRequest(ctx, "Card is already deleted")
		default:
			RespondInternal(ctx, "Could not delete card")
		}

		return
	}

	h.invalidateList(ownerID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"card_id": req.CardID,
	})
}

func (h *CardsHandler) observeExtraction(result string, elapsed time.Duration) {
	if h.prom != nil {
		h.prom.ObserveExtraction(result, elapsed)
	}
}

func (h *CardsHandler) invalidateList(userID string) {
	if h.cache != nil {
		h.cache.Delete(cardsCacheKey(userID))
	}
}
