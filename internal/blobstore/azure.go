package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// listPageCeiling caps a single listing page regardless of what the caller
// asks for.
const listPageCeiling = 1000

// Azure is a Store backed by an Azure Blob Storage container. It supports
// two credential modes: a shared-key connection string and a container SAS
// URL. A SAS token may lack container-level permissions, which changes how
// Ping verifies connectivity.
type Azure struct {
	client    *container.Client
	container string
	mode      string
}

// NewAzureFromConnectionString builds an Azure store from a shared-key
// connection string and a container name.
func NewAzureFromConnectionString(connectionString, containerName string) (*Azure, error) {
	svc, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: invalid connection string: %w", err)
	}
	return &Azure{
		client:    svc.ServiceClient().NewContainerClient(containerName),
		container: containerName,
		mode:      "connection-string",
	}, nil
}

// NewAzureFromSASURL builds an Azure store from a container-scoped SAS URL.
func NewAzureFromSASURL(sasURL string) (*Azure, error) {
	name, err := containerNameFromURL(sasURL)
	if err != nil {
		return nil, err
	}
	client, err := container.NewClientWithNoCredential(sasURL, nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: invalid SAS URL: %w", err)
	}
	return &Azure{client: client, container: name, mode: "sas-url"}, nil
}

// containerNameFromURL extracts the container segment of a blob container URL.
func containerNameFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("blobstore: invalid SAS URL: %w", err)
	}
	name := strings.Trim(u.Path, "/")
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("blobstore: SAS URL %q does not address a container", u.Host+u.Path)
	}
	return name, nil
}

func (a *Azure) List(ctx context.Context, prefix string, maxResults int) ([]model.BlobDescriptor, error) {
	pageSize := int32(listPageCeiling)
	if maxResults > 0 && maxResults < listPageCeiling {
		pageSize = int32(maxResults)
	}

	opts := &container.ListBlobsFlatOptions{MaxResults: &pageSize}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var blobs []model.BlobDescriptor
	pager := a.client.NewListBlobsFlatPager(opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, timeoutOr(ctx, translate(err), "list", "")
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil || item.Properties == nil {
				continue
			}
			d := model.BlobDescriptor{Name: *item.Name}
			if item.Properties.LastModified != nil {
				d.LastModified = *item.Properties.LastModified
			}
			if item.Properties.ContentLength != nil {
				d.Size = *item.Properties.ContentLength
			}
			blobs = append(blobs, d)
			if maxResults > 0 && len(blobs) >= maxResults {
				return blobs, nil
			}
		}
	}
	return blobs, nil
}

func (a *Azure) Exists(ctx context.Context, name string) (bool, error) {
	_, err := a.Metadata(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Azure) Metadata(ctx context.Context, name string) (model.BlobDescriptor, error) {
	props, err := a.client.NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		return model.BlobDescriptor{}, timeoutOr(ctx, translate(err), "metadata", name)
	}
	d := model.BlobDescriptor{Name: name}
	if props.LastModified != nil {
		d.LastModified = *props.LastModified
	}
	if props.ContentLength != nil {
		d.Size = *props.ContentLength
	}
	return d, nil
}

func (a *Azure) Download(ctx context.Context, name string) ([]byte, error) {
	resp, err := a.client.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		return nil, timeoutOr(ctx, translate(err), "download", name)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, timeoutOr(ctx, fmt.Errorf("blobstore: download %q: %w", name, err), "download", name)
	}
	return data, nil
}

// Ping verifies connectivity. In connection-string mode it fetches container
// properties; a SAS token may lack that permission, so SAS mode lists a
// single blob instead.
func (a *Azure) Ping(ctx context.Context) (ConnectionStatus, error) {
	status := ConnectionStatus{Container: a.container, Mode: a.mode}

	if a.mode == "sas-url" {
		blobs, err := a.List(ctx, "", 1)
		if err != nil {
			return status, timeoutOr(ctx, err, "ping", "")
		}
		status.Connected = true
		status.HasBlobs = len(blobs) > 0
		return status, nil
	}

	if _, err := a.client.GetProperties(ctx, nil); err != nil {
		return status, timeoutOr(ctx, translate(err), "ping", "")
	}
	status.Connected = true
	return status, nil
}

// translate maps Azure SDK errors onto the package's error taxonomy so
// nothing above this layer handles SDK types.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if bloberror.HasCode(err,
		bloberror.BlobNotFound,
		bloberror.ContainerNotFound,
		bloberror.ResourceNotFound,
	) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if bloberror.HasCode(err,
		bloberror.AuthenticationFailed,
		bloberror.InvalidAuthenticationInfo,
		bloberror.AuthorizationFailure,
		bloberror.AuthorizationPermissionMismatch,
	) {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case 404:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case 401, 403:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}
	return err
}
