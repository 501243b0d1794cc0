package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"dvi/internal/reports/handler"
	"dvi/internal/reports/handler/mocks"
	"dvi/internal/reports/models"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/testutil"
)

func newRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	r := chi.NewRouter()
	handler.New(svc, nil).Register(r)
	return r, svc
}

func TestReports(t *testing.T) {
	testutil.Given(t, "an identification distribution", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Identification(gomock.Any()).Return(&models.Distribution{Confirmed: 2, Unidentified: 5}, nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports/identification"))
		testutil.AssertStatusOK(t, rr)
		got := testutil.UnmarshalResponse[models.Distribution](t, rr)
		assert.Equal(t, 7, got.Total())
	})

	testutil.Given(t, "no recovery requests", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().BodiesByRequest(gomock.Any()).Return([]models.RequestCount{}, nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports/recovery-requests"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "recovery_requests", []any{})
	})

	testutil.Given(t, "per-morgue counts", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().BodiesByMorgue(gomock.Any()).Return(&models.MorgueCounts{
			Morgues: []models.MorgueCount{{Name: "Central", Bodies: 3}}, Unassigned: 1,
		}, nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports/morgues"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "unassigned", float64(1))
	})

	testutil.Given(t, "the store is down", func(t *testing.T) {
		router, svc := newRouter(t)
		svc.EXPECT().Summary(gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeStorageUnavailable, "storage unavailable"))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/reports/summary"))
		testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, "storage_unavailable")
	})
}
