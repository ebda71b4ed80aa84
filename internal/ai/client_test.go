package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandidates() []*entity.Item {
	marks := "царапина на застёжке"
	return []*entity.Item{
		{
			ID:                  uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			Type:                valueobject.ItemTypeFound,
			Name:                "Коричневый кошелёк",
			Category:            "Кошельки",
			Description:         "Кожаный кошелёк, внутри карта метро",
			DistinguishingMarks: &marks,
			Location:            "Главная библиотека",
			Date:                time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			Type:        valueobject.ItemTypeFound,
			Name:        "Чёрный зонт",
			Category:    "Аксессуары",
			Description: "Складной зонт",
			Location:    "Кафе у входа",
			Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "чистый массив", input: `["a", "b"]`, want: []string{"a", "b"}},
		{name: "пустой массив", input: `[]`, want: []string{}},
		{name: "блок кода", input: "```json\n[\"a\"]\n```", want: []string{"a"}},
		{name: "текст вокруг", input: "Вот результат: [\"x\", \"y\"] надеюсь помог", want: []string{"x", "y"}},
		{name: "пробелы в id", input: `[" a "]`, want: []string{"a"}},
		{name: "нет массива", input: "ничего не подошло", wantErr: true},
		{name: "не строки", input: `[1, 2]`, wantErr: true},
		{name: "битый json", input: `["a", ]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDList(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildMatchPrompt(t *testing.T) {
	prompt := BuildMatchPrompt(repository.MatchQuery{
		Name:        "Кошелёк",
		Description: "Потерял коричневый кошелёк",
		Location:    "Библиотека",
	}, testCandidates())

	assert.Contains(t, prompt, "11111111-1111-1111-1111-111111111111")
	assert.Contains(t, prompt, "22222222-2222-2222-2222-222222222222")
	assert.Contains(t, prompt, "царапина на застёжке")
	assert.Contains(t, prompt, "2026-03-02")
	// пустые поля запроса не попадают в текст
	assert.NotContains(t, prompt, "Категория: \n")
	assert.Less(t, strings.Index(prompt, "ПОТЕРЯННАЯ ВЕЩЬ"), strings.Index(prompt, "НАЙДЕННЫЕ ВЕЩИ"))
}

func TestClient_RankFoundItems(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` +
			"```json\\n[\\\"11111111-1111-1111-1111-111111111111\\\"]\\n```" + `"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-model", "secret")
	ids, err := client.RankFoundItems(context.Background(), repository.MatchQuery{Name: "Кошелёк"}, testCandidates())

	require.NoError(t, err)
	assert.Equal(t, []string{"11111111-1111-1111-1111-111111111111"}, ids)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "test-model", gotBody["model"])
	assert.InDelta(t, 0.2, gotBody["temperature"], 0.0001)
}

func TestClient_RankFoundItems_NoCandidatesSkipsCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	ids, err := NewClient(server.URL, "m", "").RankFoundItems(context.Background(), repository.MatchQuery{}, nil)

	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, called)
}

func TestClient_RankFoundItems_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "m", "")
	client.retryDelay = time.Millisecond
	_, err := client.RankFoundItems(context.Background(), repository.MatchQuery{}, testCandidates())

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.Contains(t, perr.Body, "rate limited")
	assert.EqualValues(t, defaultMaxRetries+1, calls.Load())
}

func TestClient_RankFoundItems_RecoversAfterServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[\"22222222-2222-2222-2222-222222222222\"]"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "m", "")
	client.retryDelay = time.Millisecond
	ids, err := client.RankFoundItems(context.Background(), repository.MatchQuery{}, testCandidates())

	require.NoError(t, err)
	assert.Equal(t, []string{"22222222-2222-2222-2222-222222222222"}, ids)
	assert.EqualValues(t, 2, calls.Load())
}

func TestClient_RankFoundItems_BadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "m", "bad").RankFoundItems(context.Background(), repository.MatchQuery{}, testCandidates())
	assert.ErrorContains(t, err, "401")
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_RankFoundItems_EmptyBaseURL(t *testing.T) {
	_, err := NewClient("", "m", "").RankFoundItems(context.Background(), repository.MatchQuery{}, testCandidates())
	assert.Error(t, err)
}
