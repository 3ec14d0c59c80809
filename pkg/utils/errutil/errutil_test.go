package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/caseguard/riskmatrix/pkg/utils/errutil"
)

func TestHandleReturnsSameError(t *testing.T) {
	orig := goerr.New("boom", goerr.V("case_id", "c-1"))
	err := errutil.Handle(context.Background(), orig, "failed")
	gt.Bool(t, errors.Is(err, orig)).True()
}

func TestHandleNil(t *testing.T) {
	gt.NoError(t, errutil.Handle(context.Background(), nil, "nothing"))
}

func TestHandleHTTPWritesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), rec, errors.New("bad input"), http.StatusBadRequest)

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	gt.S(t, rec.Body.String()).Contains("bad input")
}

func TestHandleHTTPHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), rec, goerr.New("firestore: deadline exceeded"), http.StatusInternalServerError)

	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
	gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")
	gt.S(t, rec.Body.String()).NotContains("firestore")
	gt.S(t, rec.Body.String()).Contains(`"status":500`)
}
