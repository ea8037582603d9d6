package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/peereval/internal/adapters/repository"
	service "github.com/okian/peereval/internal/app"
	"github.com/okian/peereval/internal/domain/submission"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeSheet mimics the spreadsheet web endpoint.
type fakeSheet struct {
	mu      sync.Mutex
	members [][]any
	records [][]any
	down    bool
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{
		members: [][]any{
			{"numero", "nome", "curso"},
			{1, "Ana", "Energia"},
			{2, "Bia", "Energia"},
			{3, "Caio", "Automação"},
			{4, "Duda", "TEC"},
			{5, "Eva", "Automacao"},
		},
		records: [][]any{{"semana", "avaliador", "avaliado", "nota"}},
	}
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"integrantes": f.members, "avaliacoes": f.records},
		})
	case http.MethodPost:
		var body struct {
			Semana    int     `json:"semana"`
			Avaliador string  `json:"avaliador"`
			Avaliado  string  `json:"avaliado"`
			Nota      float64 `json:"nota"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.records = append(f.records, []any{body.Semana, body.Avaliador, body.Avaliado, body.Nota})
		_, _ = w.Write([]byte(`{"result":"success"}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheet) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by a remote sheet", t, func() {
		sheet := newFakeSheet()
		srv := httptest.NewServer(sheet)
		defer srv.Close()

		store := repository.NewRemoteStore(srv.URL,
			repository.WithTimeout(2*time.Second),
			repository.WithRateLimit(0, 0),
		)
		svc := service.New(service.WithStore(store))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then the roster should be loaded with tracks resolved", func() {
			members := svc.Members()
			So(len(members), ShouldEqual, 5)
			So(members[2].Track, ShouldEqual, "automation")
			So(members[3].Track, ShouldEqual, "shared")
			So(members[4].Track, ShouldEqual, "automation")
		})

		Convey("When Duda evaluates everyone due in week 2", func() {
			first, err := svc.Submit(ctx, submission.Request{Week: 2, Evaluator: "Duda", Score: "17"})
			So(err, ShouldBeNil)
			second, err := svc.Submit(ctx, submission.Request{Week: 2, Evaluator: "Duda", Score: "18.5"})
			So(err, ShouldBeNil)

			Convey("Then both automation members are scored in roster order", func() {
				So(first.Evaluated, ShouldEqual, "Caio")
				So(first.Next.Name, ShouldEqual, "Eva")
				So(second.Evaluated, ShouldEqual, "Eva")
				So(second.Next, ShouldBeNil)
			})

			Convey("And the sheet holds both rows", func() {
				sheet.mu.Lock()
				defer sheet.mu.Unlock()
				So(len(sheet.records), ShouldEqual, 3)
			})

			Convey("And averages reflect them", func() {
				rows := svc.Averages()
				So(rows[2].Display, ShouldEqual, "17.00")
				So(rows[4].Display, ShouldEqual, "18.50")
			})
		})

		Convey("When the sheet goes down", func() {
			sheet.setDown(true)
			_, err := svc.Submit(ctx, submission.Request{Week: 1, Evaluator: "Ana", Score: "10"})

			Convey("Then the submission reports the store unavailable", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, submission.ErrStoreUnavailable), ShouldBeTrue)
				So(errors.Is(err, repository.ErrTransport), ShouldBeTrue)
			})

			Convey("And a refresh keeps the roster but marks it stale", func() {
				info, err := svc.Refresh(ctx)
				So(err, ShouldNotBeNil)
				So(info.Members, ShouldEqual, 5)
				So(info.Stale, ShouldBeTrue)
			})
		})
	})
}
