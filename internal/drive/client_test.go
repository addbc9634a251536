package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// newTestClient starts a fake Drive API backend and returns a client
// pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), srv.Client(), nil, option.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("Failed to encode response: %v", err)
	}
}

func TestGetFolder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/files/folder1") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, &drive.File{
			Id:       "folder1",
			Name:     "reports",
			MimeType: FolderMimeType,
			Parents:  []string{"root1"},
		})
	})

	info, err := client.GetFolder(context.Background(), "folder1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.ID != "folder1" || info.Name != "reports" {
		t.Errorf("Unexpected folder info: %+v", info)
	}
	if !info.IsFolder() {
		t.Error("Expected IsFolder to be true")
	}
}

func TestGetFolder_NotAFolder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, &drive.File{Id: "f1", Name: "a.txt", MimeType: "text/plain"})
	})

	_, err := client.GetFolder(context.Background(), "f1")
	if !errors.Is(err, ErrNotFolder) {
		t.Errorf("Expected ErrNotFolder, got %v", err)
	}
}

func TestGetFolder_Trashed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, &drive.File{Id: "f1", Name: "gone", MimeType: FolderMimeType, Trashed: true})
	})

	_, err := client.GetFolder(context.Background(), "f1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for trashed folder, got %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"rate limited", http.StatusTooManyRequests, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error": {"message": "nope"}}`, tt.status)
			})

			_, err := client.GetFolder(context.Background(), "f1")
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, &drive.File{Id: "c1", Parents: []string{"p1", "p2"}})
	})

	parents, err := client.Parents(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(parents) != 2 || parents[0] != "p1" || parents[1] != "p2" {
		t.Errorf("Expected [p1 p2], got %v", parents)
	}
}

func TestChildren_Pagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "'folder1' in parents") || !strings.Contains(q, "trashed=false") {
			t.Errorf("Unexpected query %q", q)
		}

		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, &drive.FileList{
				Files:         []*drive.File{{Id: "a", Name: "one.txt"}, {Id: "b", Name: "two.txt"}},
				NextPageToken: "page2",
			})
			return
		}
		writeJSON(t, w, &drive.FileList{
			Files: []*drive.File{{Id: "c", Name: "three.txt"}},
		})
	})

	children, err := client.Children(context.Background(), "folder1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("Expected 3 children, got %d", len(children))
	}
	// Provider order must be preserved across pages.
	wantIDs := []string{"a", "b", "c"}
	for i, want := range wantIDs {
		if children[i].ID != want {
			t.Errorf("Expected child %d to be %s, got %s", i, want, children[i].ID)
		}
	}
}

func TestListFolder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageSize"); got != "25" {
			t.Errorf("Expected pageSize 25, got %q", got)
		}
		writeJSON(t, w, &drive.FileList{
			Files: []*drive.File{
				{Id: "a", Name: "one.txt", MimeType: "text/plain", Size: 12, ModifiedTime: "2024-05-01T10:00:00Z"},
			},
			NextPageToken: "next",
		})
	})

	files, next, err := client.ListFolder(context.Background(), "folder1", "", 25)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if next != "next" {
		t.Errorf("Expected next page token, got %q", next)
	}
	if len(files) != 1 || files[0].Size != 12 {
		t.Errorf("Unexpected files: %+v", files)
	}
	want, _ := time.Parse(time.RFC3339, "2024-05-01T10:00:00Z")
	if !files[0].ModifiedTime.Equal(want) {
		t.Errorf("Expected modified time %v, got %v", want, files[0].ModifiedTime)
	}
}

func TestCreateFolder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var body drive.File
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if body.MimeType != FolderMimeType {
			t.Errorf("Expected folder mime type, got %s", body.MimeType)
		}
		if len(body.Parents) != 1 || body.Parents[0] != "root1" {
			t.Errorf("Expected parent root1, got %v", body.Parents)
		}
		writeJSON(t, w, &drive.File{Id: "new1", Name: body.Name, MimeType: FolderMimeType})
	})

	info, err := client.CreateFolder(context.Background(), "invoices", "root1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.ID != "new1" || info.Name != "invoices" {
		t.Errorf("Unexpected folder: %+v", info)
	}
}

func TestCreateFolder_RequiresName(t *testing.T) {
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("No request expected")
	})

	if _, err := client.CreateFolder(context.Background(), "", "root1"); err == nil {
		t.Error("Expected error for empty folder name")
	}
}

func TestUploadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/upload/") {
			t.Errorf("Expected media upload path, got %s", r.URL.Path)
		}
		writeJSON(t, w, &drive.File{Id: "up1", Name: "a.txt", MimeType: "text/plain", Size: 5})
	})

	info, err := client.UploadFile(context.Background(), "a.txt", "folder1", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.ID != "up1" {
		t.Errorf("Expected file id up1, got %s", info.ID)
	}
}

func TestUpdateFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch && r.Method != http.MethodPut {
			t.Errorf("Expected PATCH or PUT, got %s", r.Method)
		}
		writeJSON(t, w, &drive.File{Id: "up1", Name: "a.txt", Size: 7})
	})

	info, err := client.UpdateFile(context.Background(), "up1", "text/plain", strings.NewReader("updated"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.Size != 7 {
		t.Errorf("Expected size 7, got %d", info.Size)
	}
}

func TestDeleteFile(t *testing.T) {
	var deleted string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteFile(context.Background(), "f1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasSuffix(deleted, "/files/f1") {
		t.Errorf("Unexpected delete path %s", deleted)
	}
}

func TestEscapeQueryTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"with'quote", `with\'quote`},
		{`back\slash`, `back\\slash`},
		{`both\'`, `both\\\'`},
	}
	for _, tt := range tests {
		if got := escapeQueryTerm(tt.in); got != tt.want {
			t.Errorf("escapeQueryTerm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertToFileInfo(t *testing.T) {
	created := "2023-01-01T10:00:00Z"
	modified := "2023-01-02T15:30:00Z"

	info := convertToFileInfo(&drive.File{
		Id:           "file123",
		Name:         "test.pdf",
		MimeType:     "application/pdf",
		Size:         1024,
		CreatedTime:  created,
		ModifiedTime: modified,
		WebViewLink:  "https://drive.google.com/file/d/file123/view",
		Parents:      []string{"parent1"},
		Trashed:      true,
	})

	if info.ID != "file123" || info.Name != "test.pdf" || info.Size != 1024 {
		t.Errorf("Unexpected basic fields: %+v", info)
	}
	if info.IsFolder() {
		t.Error("Expected IsFolder to be false for a PDF")
	}
	if !info.Trashed {
		t.Error("Expected Trashed to be true")
	}

	wantCreated, _ := time.Parse(time.RFC3339, created)
	if !info.CreatedTime.Equal(wantCreated) {
		t.Errorf("Expected created time %v, got %v", wantCreated, info.CreatedTime)
	}
	wantModified, _ := time.Parse(time.RFC3339, modified)
	if !info.ModifiedTime.Equal(wantModified) {
		t.Errorf("Expected modified time %v, got %v", wantModified, info.ModifiedTime)
	}
}

func TestConvertToFileInfo_MinimalData(t *testing.T) {
	info := convertToFileInfo(&drive.File{Id: "f1", Name: "minimal.txt", MimeType: "text/plain"})

	if info.ID != "f1" || info.Name != "minimal.txt" {
		t.Errorf("Unexpected fields: %+v", info)
	}
	if !info.CreatedTime.IsZero() || !info.ModifiedTime.IsZero() {
		t.Error("Expected zero timestamps for minimal data")
	}
}
