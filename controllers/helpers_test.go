package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidation()
}

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&services.Error{Kind: services.ErrInvalidInput, Msg: "bad"}, http.StatusBadRequest, "bad"},
		{&services.Error{Kind: services.ErrInvalidCredentials, Msg: "Invalid credentials"}, http.StatusUnauthorized, "Invalid credentials"},
		{&services.Error{Kind: services.ErrNotFound, Msg: "Food not found"}, http.StatusNotFound, "Food not found"},
		{&services.Error{Kind: services.ErrConflict, Msg: "dup"}, http.StatusConflict, "dup"},
		{&services.Error{Kind: services.ErrUpstream, Msg: "USDA API error: 500 boom"}, http.StatusServiceUnavailable, "USDA API error: 500 boom"},
		{&services.Error{Kind: services.ErrNotConfigured, Msg: "off"}, http.StatusServiceUnavailable, "off"},
		{fmt.Errorf("wrapped: %w", services.ErrNotFound), http.StatusNotFound, "wrapped: not found"},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body["error"])
	}
}

func TestBindJSONValidationFields(t *testing.T) {
	r := gin.New()
	r.POST("/register", func(c *gin.Context) {
		var in services.RegisterInput
		if !bindJSON(c, &in) {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	body := `{"email":"not-an-email","password":"short","name":"Al","age":10,"height":180,"weight":80,
		"gender":"male","activity_level":"couch","goal":"maintenance"}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, "must be a valid email", resp.Fields["email"])
	assert.Equal(t, "must be at least 8", resp.Fields["password"])
	assert.Equal(t, "must be at least 13", resp.Fields["age"])
	assert.Contains(t, resp.Fields["activity_level"], "must be one of")
	assert.NotContains(t, resp.Fields, "name")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"age":"old"`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestParamAndUserHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	_, ok := uuidParam(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	_, ok = currentUser(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	id := uuid.New()
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Set("userID", id)
	got, ok := currentUser(c)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
