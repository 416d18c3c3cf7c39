package items

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	itemservice "github.com/santiagotarnoski/qrsplit/internal/service/itemservice"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*ItemHandler, *MockService, *MockSnapshots) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	snapshots := NewMockSnapshots(ctrl)
	handler := New(service, snapshots)
	return handler, service, snapshots
}

func newRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAddItem(t *testing.T) {
	handler, service, snapshots := NewMock(t)
	params := map[string]string{"sessionID": "session_1"}

	t.Run("Locale-formatted amount normalized before the service call", func(t *testing.T) {
		service.EXPECT().Add(gomock.Any(), "session_1", "Pizza", 2000.50, 100.0, 50.0, nil).
			Return(&domain.Item{ID: "item-1", Name: "Pizza", Amount: 2000.50}, nil)
		snapshots.EXPECT().Snapshot(gomock.Any(), "session_1").Return(&domain.SessionProjection{
			Session: domain.Session{SessionID: "session_1", TotalAmount: 2150.50},
		}, nil, nil)

		w := httptest.NewRecorder()
		handler.AddItem(w, newRequest(http.MethodPost, "/api/sessions/session_1/items",
			`{"name":"Pizza","amount":"2.000,50","tax":"100","tip":"50"}`, params))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp dto.AddItemResponseDTO
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "item-1", resp.Item.ID)
	})

	t.Run("Non-numeric amount rejected with the raw input echoed", func(t *testing.T) {
		service.EXPECT().Add(gomock.Any(), "session_1", "Pizza", 0.0, 0.0, 0.0, nil).
			Return(nil, itemservice.ErrInvalidAmount)

		w := httptest.NewRecorder()
		handler.AddItem(w, newRequest(http.MethodPost, "/api/sessions/session_1/items",
			`{"name":"Pizza","amount":"abc"}`, params))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "abc")
	})

	t.Run("Missing name", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.AddItem(w, newRequest(http.MethodPost, "/api/sessions/session_1/items",
			`{"amount":10}`, params))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown session", func(t *testing.T) {
		service.EXPECT().Add(gomock.Any(), "session_1", "Pizza", 10.0, 0.0, 0.0, nil).
			Return(nil, itemservice.ErrSessionNotFound)

		w := httptest.NewRecorder()
		handler.AddItem(w, newRequest(http.MethodPost, "/api/sessions/session_1/items",
			`{"name":"Pizza","amount":10}`, params))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateAssignees(t *testing.T) {
	handler, service, snapshots := NewMock(t)
	params := map[string]string{"sessionID": "session_1", "itemID": "item-1"}

	t.Run("Assignees replaced", func(t *testing.T) {
		service.EXPECT().UpdateAssignees(gomock.Any(), "session_1", "item-1", []string{"p-1"}).
			Return(&domain.Item{ID: "item-1", Assignees: []string{"p-1"}}, nil)
		snapshots.EXPECT().Snapshot(gomock.Any(), "session_1").Return(&domain.SessionProjection{
			Session: domain.Session{SessionID: "session_1"},
		}, nil, nil)

		w := httptest.NewRecorder()
		handler.UpdateAssignees(w, newRequest(http.MethodPut, "/api/sessions/session_1/items/item-1/assignees",
			`{"assignees":["p-1"]}`, params))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Item not found", func(t *testing.T) {
		service.EXPECT().UpdateAssignees(gomock.Any(), "session_1", "item-1", []string{"p-1"}).
			Return(nil, itemservice.ErrItemNotFound)

		w := httptest.NewRecorder()
		handler.UpdateAssignees(w, newRequest(http.MethodPut, "/api/sessions/session_1/items/item-1/assignees",
			`{"assignees":["p-1"]}`, params))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
