package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ArborCRM/internal/backend"
	"ArborCRM/internal/models"
)

func newTestClient(handler http.HandlerFunc) (*backend.Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return backend.NewClient(srv.URL, "service-token", 5*time.Second), srv
}

func TestGetJob_SendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(models.Job{ID: 5, Status: "active"})
	})
	defer srv.Close()

	job, err := client.GetJob(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetJob вернул ошибку: %v", err)
	}
	if job.ID != 5 || job.Status != "active" {
		t.Errorf("job = %+v", job)
	}
	if gotAuth != "Bearer service-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestDoRequest_PostCarriesIdempotenceKey(t *testing.T) {
	var gotKey string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotence-Key")
		w.WriteHeader(http.StatusCreated)
	})
	defer srv.Close()

	err := client.CreateEarning(context.Background(), models.Earning{UserID: 1, JobID: 2, Amount: 200})
	if err != nil {
		t.Fatalf("CreateEarning вернул ошибку: %v", err)
	}
	if gotKey == "" {
		t.Error("POST должен нести заголовок Idempotence-Key")
	}
}

func TestDoRequest_ErrorStatusBecomesBackendError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"job not found"}`, http.StatusNotFound)
	})
	defer srv.Close()

	_, err := client.GetJob(context.Background(), 99)
	var backendErr *backend.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("ожидали *BackendError, got %v", err)
	}
	if backendErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", backendErr.StatusCode)
	}
}

func TestUpdateJobStatus_AcceptsBothResponseShapes(t *testing.T) {
	// Форма 1: {"job": {...}}
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]models.Job{"job": {ID: 7, Status: "completed"}})
	})
	job, err := client.UpdateJobStatus(context.Background(), 7, "completed")
	srv.Close()
	if err != nil || job.Status != "completed" {
		t.Fatalf("обернутая форма: job=%+v err=%v", job, err)
	}

	// Форма 2: голый объект
	client, srv = newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Job{ID: 7, Status: "completed"})
	})
	defer srv.Close()
	job, err = client.UpdateJobStatus(context.Background(), 7, "completed")
	if err != nil || job.Status != "completed" {
		t.Fatalf("голая форма: job=%+v err=%v", job, err)
	}
}

func TestListEarnings_AcceptsBothResponseShapes(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "3" {
			t.Errorf("page = %q, want 3", r.URL.Query().Get("page"))
		}
		json.NewEncoder(w).Encode(map[string][]models.Earning{"data": {{ID: 1}, {ID: 2}}})
	})
	earnings, err := client.ListEarnings(context.Background(), 3)
	srv.Close()
	if err != nil || len(earnings) != 2 {
		t.Fatalf("обернутая форма: %v, err=%v", earnings, err)
	}

	client, srv = newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Earning{{ID: 3}})
	})
	defer srv.Close()
	earnings, err = client.ListEarnings(context.Background(), 1)
	if err != nil || len(earnings) != 1 {
		t.Fatalf("голая форма: %v, err=%v", earnings, err)
	}
}

func TestGetCurrentUser_UsesUserToken(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			t.Errorf("Authorization = %q, want пользовательский токен", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(models.User{ID: 12, Role: "technician"})
	})
	defer srv.Close()

	user, err := client.GetCurrentUser(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("GetCurrentUser вернул ошибку: %v", err)
	}
	if user.ID != 12 || user.Role != "technician" {
		t.Errorf("user = %+v", user)
	}
}

func TestClient_TimeoutIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	client := backend.NewClient(srv.URL, "", 20*time.Millisecond)

	if _, err := client.GetJob(context.Background(), 1); err == nil {
		t.Fatal("зависший бэкенд должен давать ошибку, а не висеть")
	}
}
