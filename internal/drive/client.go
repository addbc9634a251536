package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/driveguard/driveguard/internal/logging"
	"github.com/driveguard/driveguard/internal/scope"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// listPageSize is the page size used for child listings.
	listPageSize = 1000
)

// metadataFields are the file fields requested on every metadata call.
const metadataFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, parents, trashed"

// Client wraps the Google Drive API service with typed results and
// classified errors. It performs no retries: a single provider failure
// propagates immediately to the caller.
type Client struct {
	service *drive.Service
	logger  *slog.Logger
}

// Interface guards: the client must satisfy the scope capabilities.
var (
	_ scope.ParentLister = (*Client)(nil)
	_ scope.ChildLister  = (*Client)(nil)
)

// NewClient creates a Drive client on top of an authenticated HTTP client.
// Additional options (e.g. a custom endpoint in tests) are passed through to
// the underlying service.
func NewClient(ctx context.Context, httpClient *http.Client, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	allOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := drive.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service: service,
		logger:  logging.WithComponent(logger, "drive"),
	}, nil
}

// GetFolder retrieves metadata for a folder id. It returns ErrNotFound for
// unresolvable or trashed ids and ErrNotFolder when the id resolves to a
// regular file.
func (c *Client) GetFolder(ctx context.Context, folderID string) (*FileInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("%w: folderID is required", ErrNotFound)
	}

	file, err := c.service.Files.Get(folderID).
		Context(ctx).
		Fields(metadataFields).
		Do()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get folder %s: %w", folderID, err))
	}

	info := convertToFileInfo(file)
	if info.Trashed {
		return nil, fmt.Errorf("%w: folder %s is trashed", ErrNotFound, folderID)
	}
	if !info.IsFolder() {
		return nil, fmt.Errorf("%w: %s has mime type %s", ErrNotFolder, folderID, info.MimeType)
	}
	return info, nil
}

// Parents returns the parent folder ids of folderID in provider order.
func (c *Client) Parents(ctx context.Context, folderID string) ([]string, error) {
	if folderID == "" {
		return nil, fmt.Errorf("%w: folderID is required", ErrNotFound)
	}

	file, err := c.service.Files.Get(folderID).
		Context(ctx).
		Fields("id, parents").
		Do()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get parents of %s: %w", folderID, err))
	}

	return file.Parents, nil
}

// Children returns the (id, name) pairs of all non-trashed children of
// folderID, following pagination, in the order the provider returns them.
func (c *Client) Children(ctx context.Context, folderID string) ([]scope.ChildFile, error) {
	var children []scope.ChildFile
	pageToken := ""

	for {
		call := c.service.Files.List().
			Context(ctx).
			Q(childrenQuery(folderID)).
			PageSize(listPageSize).
			Fields("nextPageToken, files(id, name)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		fileList, err := call.Do()
		if err != nil {
			return nil, classify(fmt.Errorf("failed to list children of %s: %w", folderID, err))
		}

		for _, f := range fileList.Files {
			children = append(children, scope.ChildFile{ID: f.Id, Name: f.Name})
		}

		pageToken = fileList.NextPageToken
		if pageToken == "" {
			return children, nil
		}
	}
}

// ListFolder returns one page of non-trashed entries in folderID with full
// metadata. pageSize values outside (0, listPageSize] fall back to the
// default page size.
func (c *Client) ListFolder(ctx context.Context, folderID, pageToken string, pageSize int64) ([]*FileInfo, string, error) {
	if pageSize <= 0 || pageSize > listPageSize {
		pageSize = listPageSize
	}

	call := c.service.Files.List().
		Context(ctx).
		Q(childrenQuery(folderID)).
		PageSize(pageSize).
		Fields("nextPageToken, files(" + metadataFields + ")")
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	fileList, err := call.Do()
	if err != nil {
		return nil, "", classify(fmt.Errorf("failed to list folder %s: %w", folderID, err))
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, fileList.NextPageToken, nil
}

// CreateFolder creates a folder named name under parentID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if parentID != "" {
		file.Parents = []string{parentID}
	}

	created, err := c.service.Files.Create(file).
		Context(ctx).
		Fields(metadataFields).
		Do()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to create folder: %w", err))
	}

	c.logger.Info("folder created",
		logging.Operation("create_folder"),
		logging.FolderID(created.Id),
		logging.FileName(name))
	return convertToFileInfo(created), nil
}

// UploadFile creates a new file named name under parentID with the given
// content. An empty mimeType lets the provider detect it.
func (c *Client) UploadFile(ctx context.Context, name, parentID, mimeType string, content io.Reader) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: mimeType,
	}
	if parentID != "" {
		file.Parents = []string{parentID}
	}

	call := c.service.Files.Create(file).Context(ctx)
	if mimeType != "" {
		call = call.Media(content, googleapi.ContentType(mimeType))
	} else {
		call = call.Media(content)
	}

	created, err := call.Fields(metadataFields).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to upload file: %w", err))
	}

	return convertToFileInfo(created), nil
}

// UpdateFile replaces the content of an existing file by id.
func (c *Client) UpdateFile(ctx context.Context, fileID, mimeType string, content io.Reader) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	call := c.service.Files.Update(fileID, &drive.File{}).Context(ctx)
	if mimeType != "" {
		call = call.Media(content, googleapi.ContentType(mimeType))
	} else {
		call = call.Media(content)
	}

	updated, err := call.Fields(metadataFields).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to update file %s: %w", fileID, err))
	}

	return convertToFileInfo(updated), nil
}

// DeleteFile permanently deletes a file or folder by id.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: fileID is required", ErrNotFound)
	}

	if err := c.service.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return classify(fmt.Errorf("failed to delete file %s: %w", fileID, err))
	}
	return nil
}

// childrenQuery builds the Drive query for non-trashed children of a folder.
func childrenQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed=false", escapeQueryTerm(folderID))
}

// escapeQueryTerm escapes a value for inclusion in a single-quoted Drive
// query term.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// convertToFileInfo converts a Drive API File to our FileInfo type.
func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		Trashed:     f.Trashed,
	}

	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			info.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}

	return info
}
