package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// Content types used by exports.
const (
	ContentTypePDF = "application/pdf"
	ContentTypeCSV = "text/csv"
)

// Sink stores an exported document and returns where it went.
type Sink interface {
	Write(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// FileSink writes exports into a local directory.
type FileSink struct {
	Dir string
}

// Write implements [Sink].
func (s FileSink) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// BlobOptions configures a BlobSink. Either ConnectionString or AccountURL
// must be set; with AccountURL the credential defaults to
// [azidentity.NewDefaultAzureCredential].
type BlobOptions struct {
	ConnectionString string
	AccountURL       string
	Container        string
	// Prefix is prepended to every blob name, e.g. a session ID.
	Prefix string
	// CreateContainer creates the container on first write if needed.
	CreateContainer bool

	Credential    azcore.TokenCredential
	ClientOptions *azblob.ClientOptions
}

// BlobSink uploads exports to Azure Blob Storage.
type BlobSink struct {
	client          *azblob.Client
	container       string
	prefix          string
	createContainer bool
}

// NewBlobSink creates a BlobSink.
func NewBlobSink(opts BlobOptions) (*BlobSink, error) {
	if opts.Container == "" {
		return nil, errors.New("a blob container name is required")
	}

	var client *azblob.Client
	var err error

	switch {
	case opts.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(opts.ConnectionString, opts.ClientOptions)
	case opts.AccountURL != "":
		cred := opts.Credential
		if cred == nil {
			cred, err = azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return nil, fmt.Errorf("creating Azure credential for blob export: %w", err)
			}
		}
		client, err = azblob.NewClient(opts.AccountURL, cred, opts.ClientOptions)
	default:
		return nil, errors.New("blob export needs a connection string or an account URL")
	}

	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return &BlobSink{
		client:          client,
		container:       opts.Container,
		prefix:          strings.Trim(opts.Prefix, "/"),
		createContainer: opts.CreateContainer,
	}, nil
}

// Write implements [Sink].
func (s *BlobSink) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	if s.createContainer {
		_, err := s.client.CreateContainer(ctx, s.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return "", fmt.Errorf("creating container %q: %w", s.container, err)
		}
		s.createContainer = false
	}

	blobName := name
	if s.prefix != "" {
		blobName = s.prefix + "/" + name
	}

	_, err := s.client.UploadBuffer(ctx, s.container, blobName, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to container %q: %w", blobName, s.container, err)
	}

	location := strings.TrimSuffix(s.client.URL(), "/") + "/" + s.container + "/" + blobName
	slog.Debug("Uploaded export", "location", location, "bytes", len(data))
	return location, nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid export name %q", name)
	}
	return nil
}
