package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/driveguard/driveguard/internal/drive"
	"github.com/driveguard/driveguard/internal/instrumentation"
	"github.com/driveguard/driveguard/internal/scope"
)

const (
	// maxUploadMemory bounds the in-memory portion of multipart parsing;
	// larger file parts spill to temporary files.
	maxUploadMemory = 32 << 20

	// defaultPageSize is the listing page size when the request names none.
	defaultPageSize = 100

	// maxPageSize is the Drive API ceiling for a single listing page.
	maxPageSize = 1000
)

// API holds the REST handlers for the driveguard endpoints.
type API struct {
	sc *ServerContext
}

// NewAPI creates the API handler set on top of the given server context.
func NewAPI(sc *ServerContext) *API {
	return &API{sc: sc}
}

// Register registers all API routes on the given mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/auth/url", a.handleAuthURL)
	mux.HandleFunc("POST /api/v1/auth/token", a.handleAuthExchange)
	mux.HandleFunc("POST /api/v1/files", a.handleUpload)
	mux.HandleFunc("POST /api/v1/folders", a.handleCreateFolder)
	mux.HandleFunc("GET /api/v1/folders/{id}/files", a.handleListFolder)
	mux.HandleFunc("DELETE /api/v1/folders/{id}/contents", a.handleDeleteContents)
}

// checkScope runs the folder scope guard and records the check.
func (a *API) checkScope(r *http.Request, folderID string) (bool, error) {
	guard, err := a.sc.Guard(r.Context())
	if err != nil {
		return false, err
	}

	start := time.Now()
	allowed := guard.IsInScope(r.Context(), folderID)
	a.sc.Metrics().RecordScopeCheck(r.Context(), allowed, time.Since(start))
	return allowed, nil
}

// recordDrive records a timed Drive API operation metric.
func (a *API) recordDrive(r *http.Request, operation string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	a.sc.Metrics().RecordDriveOperation(r.Context(), operation, status, time.Since(start))
}

// AuthURLResponse is the response of GET /api/v1/auth/url.
type AuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

func (a *API) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to generate state")
			return
		}
		state = hex.EncodeToString(buf)
	}

	writeJSON(w, http.StatusOK, AuthURLResponse{
		URL:   a.sc.Auth().AuthURL(state),
		State: state,
	})
}

// AuthExchangeRequest is the body of POST /api/v1/auth/token.
type AuthExchangeRequest struct {
	Code string `json:"code"`
}

// AuthExchangeResponse is the response of POST /api/v1/auth/token.
type AuthExchangeResponse struct {
	Status string `json:"status"`
}

func (a *API) handleAuthExchange(w http.ResponseWriter, r *http.Request) {
	var req AuthExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "code is required")
		return
	}

	ctx, span := instrumentation.StartOperationSpan(r.Context(), instrumentation.OpAuthExchange)
	defer span.End()
	r = r.WithContext(ctx)

	record := instrumentation.NewOperationRecord(instrumentation.OpAuthExchange).
		WithSpanContext(r.Context())

	if _, err := a.sc.Auth().Exchange(r.Context(), req.Code); err != nil {
		a.sc.Metrics().RecordOAuthExchange(r.Context(), instrumentation.OAuthResultFailure)
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeError(w, http.StatusUnauthorized, codeExchangeFailed, "authorization code exchange failed")
		return
	}

	a.sc.Metrics().RecordOAuthExchange(r.Context(), instrumentation.OAuthResultSuccess)
	a.sc.Audit().LogOperation(record.CompleteSuccess())
	instrumentation.SetSpanSuccess(span)
	writeJSON(w, http.StatusOK, AuthExchangeResponse{Status: "authorized"})
}

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "file part is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "file name is required")
		return
	}

	folderID := r.FormValue("folderId")
	if folderID == "" {
		folderID = a.sc.Config().Drive.RootFolderID
	}

	overwrite := false
	if raw := r.FormValue("overwrite"); raw != "" {
		overwrite, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "overwrite must be a boolean")
			return
		}
	}

	ctx, span := instrumentation.StartOperationSpan(r.Context(), instrumentation.OpUpload,
		instrumentation.NewSpanAttributeBuilder().WithFolder(folderID).Build()...)
	defer span.End()
	r = r.WithContext(ctx)

	record := instrumentation.NewOperationRecord(instrumentation.OpUpload).
		WithFolder(folderID, "").
		WithSpanContext(r.Context())

	allowed, err := a.checkScope(r, folderID)
	if err != nil {
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}
	if !allowed {
		a.sc.Audit().LogOperation(record.CompleteDenied())
		instrumentation.AddSpanEvent(span, "scope_denied",
			instrumentation.NewSpanAttributeBuilder().WithScopeVerdict(false).Build()...)
		writeError(w, http.StatusForbidden, codeScopeViolation,
			fmt.Sprintf("folder %s is outside the permitted root", folderID))
		return
	}

	resolver, err := a.sc.Resolver(r.Context())
	if err != nil {
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	plan, err := resolver.ResolvePlan(r.Context(), header.Filename, folderID, overwrite)
	if err != nil {
		a.sc.Metrics().RecordUploadResolution(r.Context(), "", instrumentation.StatusError)
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}
	a.sc.Metrics().RecordUploadResolution(r.Context(), plan.Mode.String(), instrumentation.StatusSuccess)
	record.WithMode(plan.Mode.String())

	client, err := a.sc.DriveClient(r.Context())
	if err != nil {
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var info *drive.FileInfo
	start := time.Now()
	if plan.Mode == scope.ModeUpdate {
		info, err = client.UpdateFile(r.Context(), plan.TargetFileID, mimeType, file)
		a.recordDrive(r, instrumentation.DriveOpUpdate, start, err)
	} else {
		info, err = client.UploadFile(r.Context(), header.Filename, folderID, mimeType, file)
		a.recordDrive(r, instrumentation.DriveOpUpload, start, err)
	}
	if err != nil {
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	a.sc.Audit().LogOperation(record.WithFile(info.ID, info.Name).CompleteSuccess())
	instrumentation.SetSpanSuccess(span)

	status := http.StatusCreated
	if plan.Mode == scope.ModeUpdate {
		status = http.StatusOK
	}
	writeJSON(w, status, info)
}

// CreateFolderRequest is the body of POST /api/v1/folders.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

func (a *API) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "name is required")
		return
	}
	if req.ParentID == "" {
		req.ParentID = a.sc.Config().Drive.RootFolderID
	}

	ctx, span := instrumentation.StartOperationSpan(r.Context(), instrumentation.OpFolderCreate,
		instrumentation.NewSpanAttributeBuilder().WithFolder(req.ParentID).Build()...)
	defer span.End()
	r = r.WithContext(ctx)

	record := instrumentation.NewOperationRecord(instrumentation.OpFolderCreate).
		WithFolder(req.ParentID, "").
		WithSpanContext(r.Context())

	allowed, err := a.checkScope(r, req.ParentID)
	if err != nil {
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}
	if !allowed {
		a.sc.Audit().LogOperation(record.CompleteDenied())
		instrumentation.AddSpanEvent(span, "scope_denied",
			instrumentation.NewSpanAttributeBuilder().WithScopeVerdict(false).Build()...)
		writeError(w, http.StatusForbidden, codeScopeViolation,
			fmt.Sprintf("folder %s is outside the permitted root", req.ParentID))
		return
	}

	client, err := a.sc.DriveClient(r.Context())
	if err != nil {
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	start := time.Now()
	info, err := client.CreateFolder(r.Context(), req.Name, req.ParentID)
	a.recordDrive(r, instrumentation.DriveOpCreate, start, err)
	if err != nil {
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	a.sc.Audit().LogOperation(record.WithFile(info.ID, info.Name).CompleteSuccess())
	instrumentation.SetSpanSuccess(span)
	writeJSON(w, http.StatusCreated, info)
}

// ListFolderResponse is the response of GET /api/v1/folders/{id}/files.
type ListFolderResponse struct {
	Files         []*drive.FileInfo `json:"files"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

func (a *API) handleListFolder(w http.ResponseWriter, r *http.Request) {
	folderID := r.PathValue("id")

	pageSize := int64(defaultPageSize)
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			writeError(w, http.StatusBadRequest, codeInvalidRequest,
				fmt.Sprintf("pageSize must be between 1 and %d", maxPageSize))
			return
		}
		pageSize = parsed
	}

	ctx, span := instrumentation.StartOperationSpan(r.Context(), instrumentation.OpFolderList,
		instrumentation.NewSpanAttributeBuilder().WithFolder(folderID).Build()...)
	defer span.End()
	r = r.WithContext(ctx)

	allowed, err := a.checkScope(r, folderID)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}
	if !allowed {
		instrumentation.AddSpanEvent(span, "scope_denied",
			instrumentation.NewSpanAttributeBuilder().WithScopeVerdict(false).Build()...)
		writeError(w, http.StatusForbidden, codeScopeViolation,
			fmt.Sprintf("folder %s is outside the permitted root", folderID))
		return
	}

	client, err := a.sc.DriveClient(r.Context())
	if err != nil {
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	listCtx, listSpan := instrumentation.StartDriveSpan(r.Context(), instrumentation.DriveOpList,
		instrumentation.NewSpanAttributeBuilder().WithFolder(folderID).Build()...)
	start := time.Now()
	files, next, err := client.ListFolder(listCtx, folderID, r.URL.Query().Get("pageToken"), pageSize)
	a.recordDrive(r, instrumentation.DriveOpList, start, err)
	if err != nil {
		instrumentation.SetSpanError(listSpan, err)
		listSpan.End()
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}
	listSpan.End()
	instrumentation.SetSpanSuccess(span)

	if files == nil {
		files = []*drive.FileInfo{}
	}
	writeJSON(w, http.StatusOK, ListFolderResponse{Files: files, NextPageToken: next})
}

// DeleteContentsResponse is the response of DELETE /api/v1/folders/{id}/contents.
type DeleteContentsResponse struct {
	Deleted int `json:"deleted"`
}

func (a *API) handleDeleteContents(w http.ResponseWriter, r *http.Request) {
	folderID := r.PathValue("id")

	ctx, span := instrumentation.StartOperationSpan(r.Context(), instrumentation.OpDeleteContents,
		instrumentation.NewSpanAttributeBuilder().WithFolder(folderID).Build()...)
	defer span.End()
	r = r.WithContext(ctx)

	record := instrumentation.NewOperationRecord(instrumentation.OpDeleteContents).
		WithFolder(folderID, "").
		WithSpanContext(r.Context())

	allowed, err := a.checkScope(r, folderID)
	if err != nil {
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}
	if !allowed {
		a.sc.Audit().LogOperation(record.CompleteDenied())
		instrumentation.AddSpanEvent(span, "scope_denied",
			instrumentation.NewSpanAttributeBuilder().WithScopeVerdict(false).Build()...)
		writeError(w, http.StatusForbidden, codeScopeViolation,
			fmt.Sprintf("folder %s is outside the permitted root", folderID))
		return
	}

	client, err := a.sc.DriveClient(r.Context())
	if err != nil {
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	start := time.Now()
	children, err := client.Children(r.Context(), folderID)
	a.recordDrive(r, instrumentation.DriveOpList, start, err)
	if err != nil {
		a.sc.Audit().LogOperation(record.CompleteWithError(err))
		instrumentation.SetSpanError(span, err)
		writeMappedError(w, a.sc.Logger(), err)
		return
	}

	deleted := 0
	for _, child := range children {
		start := time.Now()
		err := client.DeleteFile(r.Context(), child.ID)
		a.recordDrive(r, instrumentation.DriveOpDelete, start, err)
		if err != nil {
			wrapped := fmt.Errorf("deleted %d of %d children, then failed on %s: %w",
				deleted, len(children), child.ID, err)
			a.sc.Audit().LogOperation(record.CompleteWithError(wrapped))
			instrumentation.SetSpanError(span, wrapped)
			writeMappedError(w, a.sc.Logger(), wrapped)
			return
		}
		deleted++
	}

	a.sc.Audit().LogOperation(record.CompleteSuccess())
	instrumentation.SetSpanSuccess(span)
	writeJSON(w, http.StatusOK, DeleteContentsResponse{Deleted: deleted})
}
