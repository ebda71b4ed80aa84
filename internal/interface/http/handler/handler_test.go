package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/item"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memItemRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*entity.Item
	lastFilter repository.ItemFilter
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[uuid.UUID]*entity.Item)}
}

func (r *memItemRepo) Create(ctx context.Context, it *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *memItemRepo) Update(ctx context.Context, it *entity.Item) error {
	return r.Create(ctx, it)
}

func (r *memItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperror.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, apperror.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *memItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []*entity.Item
	for _, it := range r.items {
		if filter.Status != "" && string(it.Status) != filter.Status {
			continue
		}
		if filter.OwnerID != nil && it.OwnerID != *filter.OwnerID {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memItemRepo) FindMatchCandidates(ctx context.Context, category string, excludeOwnerID *uuid.UUID, limit int) ([]*entity.Item, error) {
	return nil, nil
}

func (r *memItemRepo) CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[valueobject.ItemStatus]int, error) {
	return map[valueobject.ItemStatus]int{}, nil
}

func (r *memItemRepo) CountByType(ctx context.Context) (map[valueobject.ItemType]int, error) {
	return map[valueobject.ItemType]int{}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newItemRouter(repo *memItemRepo, userID uuid.UUID) *gin.Engine {
	h := NewItemHandler(
		item.NewCreateItemUseCase(repo, nil),
		item.NewUpdateItemUseCase(repo),
		item.NewGetItemUseCase(repo),
		item.NewListItemsUseCase(repo),
		item.NewDeleteItemUseCase(repo, nil),
	)

	r := gin.New()
	if userID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserIDKey, userID)
			c.Next()
		})
	}
	r.POST("/items", h.CreateItem)
	r.GET("/items", h.ListItems)
	r.GET("/items/mine", h.ListMyItems)
	r.GET("/items/:id", h.GetItem)
	r.PUT("/items/:id", h.UpdateItem)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func walletRequest() map[string]any {
	return map[string]any{
		"type":        "found",
		"name":        "Кошелёк",
		"category":    "Аксессуары",
		"description": "Коричневый кожаный кошелёк с картой метро",
		"location":    "Станция Лесная",
		"date":        "2025-09-01",
		"contact":     "+7 900 000-00-00",
	}
}

func TestItemHandler_CreateAndGet(t *testing.T) {
	repo := newMemItemRepo()
	owner := uuid.New()
	r := newItemRouter(repo, owner)

	w, env := doJSON(t, r, http.MethodPost, "/items", walletRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)

	var created struct {
		ID      uuid.UUID `json:"id"`
		Status  string    `json:"status"`
		Date    string    `json:"date"`
		OwnerID uuid.UUID `json:"owner_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "open", created.Status)
	assert.Equal(t, "2025-09-01", created.Date)
	assert.Equal(t, owner, created.OwnerID)

	w, env = doJSON(t, r, http.MethodGet, "/items/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestItemHandler_CreateUnauthorized(t *testing.T) {
	r := newItemRouter(newMemItemRepo(), uuid.Nil)

	w, env := doJSON(t, r, http.MethodPost, "/items", walletRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
}

func TestItemHandler_CreateInvalidDate(t *testing.T) {
	r := newItemRouter(newMemItemRepo(), uuid.New())

	body := walletRequest()
	body["date"] = "вчера"
	w, env := doJSON(t, r, http.MethodPost, "/items", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
}

func TestItemHandler_CreateInvalidType(t *testing.T) {
	r := newItemRouter(newMemItemRepo(), uuid.New())

	body := walletRequest()
	body["type"] = "stolen"
	w, env := doJSON(t, r, http.MethodPost, "/items", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(apperror.ErrCodeValidation), env.Error.Code)
}

func TestItemHandler_GetNotFound(t *testing.T) {
	r := newItemRouter(newMemItemRepo(), uuid.Nil)

	w, env := doJSON(t, r, http.MethodGet, "/items/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(apperror.ErrCodeNotFound), env.Error.Code)
}

func TestItemHandler_GetInvalidID(t *testing.T) {
	r := newItemRouter(newMemItemRepo(), uuid.Nil)

	w, _ := doJSON(t, r, http.MethodGet, "/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestItemHandler_UpdateByStrangerForbidden(t *testing.T) {
	repo := newMemItemRepo()
	owner := uuid.New()
	_, env := doJSON(t, newItemRouter(repo, owner), http.MethodPost, "/items", walletRequest())
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ := doJSON(t, newItemRouter(repo, uuid.New()), http.MethodPut, "/items/"+created.ID.String(), walletRequest())
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := walletRequest()
	body["name"] = "Кошелёк с ремешком"
	w, env = doJSON(t, newItemRouter(repo, owner), http.MethodPut, "/items/"+created.ID.String(), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Кошелёк с ремешком")
}

func TestItemHandler_ListDefaultsToOpen(t *testing.T) {
	repo := newMemItemRepo()
	r := newItemRouter(repo, uuid.Nil)

	w, _ := doJSON(t, r, http.MethodGet, "/items?limit=500", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "open", repo.lastFilter.Status)
	assert.LessOrEqual(t, repo.lastFilter.Limit, 100)
}

func TestItemHandler_ListMineUsesCaller(t *testing.T) {
	repo := newMemItemRepo()
	owner := uuid.New()
	r := newItemRouter(repo, owner)

	w, _ := doJSON(t, r, http.MethodGet, "/items/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.lastFilter.OwnerID)
	assert.Equal(t, owner, *repo.lastFilter.OwnerID)
}

func TestClaimHandler_RequiresUser(t *testing.T) {
	h := &ClaimHandler{}
	r := gin.New()
	r.POST("/items/:id/claims", h.SubmitClaim)
	r.POST("/claims/:id/accept", h.AcceptClaim)
	r.GET("/claims/mine", h.ListMyClaims)

	for _, path := range []string{"/items/" + uuid.NewString() + "/claims", "/claims/" + uuid.NewString() + "/accept"} {
		w, _ := doJSON(t, r, http.MethodPost, path, map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w, _ := doJSON(t, r, http.MethodGet, "/claims/mine", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClaimHandler_InvalidClaimID(t *testing.T) {
	h := &ClaimHandler{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		c.Next()
	})
	r.POST("/claims/:id/resolve", h.ResolveClaim)

	w, _ := doJSON(t, r, http.MethodPost, "/claims/bad/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_EmptyBodyRejected(t *testing.T) {
	h := &ChatHandler{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		c.Next()
	})
	r.POST("/claims/:id/messages", h.SendMessage)

	w, _ := doJSON(t, r, http.MethodPost, "/claims/"+uuid.NewString()+"/messages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchHandler_SearchRequiresDescription(t *testing.T) {
	h := &MatchHandler{}
	r := gin.New()
	r.POST("/matches/search", h.Search)

	w, env := doJSON(t, r, http.MethodPost, "/matches/search", map[string]string{"location": "Вокзал"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestFeedbackHandler_InvalidClaimID(t *testing.T) {
	h := &FeedbackHandler{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		c.Next()
	})
	r.POST("/feedback", h.SubmitFeedback)

	w, _ := doJSON(t, r, http.MethodPost, "/feedback", map[string]any{"claim_id": "nope", "rating": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaintenanceHandler_SetRequiresFlag(t *testing.T) {
	h := &MaintenanceHandler{}
	r := gin.New()
	r.PUT("/admin/maintenance", h.SetMaintenance)

	w, _ := doJSON(t, r, http.MethodPut, "/admin/maintenance", map[string]string{"message": "работы"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMediaHandler_MissingFile(t *testing.T) {
	h := &MediaHandler{}
	r := gin.New()
	r.POST("/media/images", h.UploadImage)

	w, _ := doJSON(t, r, http.MethodPost, "/media/images", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
