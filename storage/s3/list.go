package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
)

// maxPageSize is the largest page ListObjectsV2 will return.
const maxPageSize = 1000

// Lister handles listing of S3 objects.
type Lister struct {
	client s3api.S3API
}

// NewLister creates a new Lister.
func NewLister(client s3api.S3API) *Lister {
	return &Lister{
		client: client,
	}
}

// ListConfig holds configuration for list operations.
type ListConfig struct {
	Bucket   string
	Prefix   string
	PageSize int32
}

// Page represents one page of a list operation.
type Page struct {
	Objects           []logtypes.Object
	IsTruncated       bool
	ContinuationToken string
}

// ListWithPaginator creates a paginator for multi-page listing.
func (l *Lister) ListWithPaginator(config *ListConfig) *Paginator {
	return &Paginator{
		client:    l.client,
		config:    config,
		pageSize:  optimalPageSize(config),
		firstPage: true,
	}
}

// Paginator walks ListObjectsV2 continuation tokens.
type Paginator struct {
	client            s3api.S3API
	config            *ListConfig
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
func (p *Paginator) NextPage(ctx context.Context) (*Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.config.Bucket),
		MaxKeys: aws.Int32(p.pageSize),
	}
	if p.config.Prefix != "" {
		input.Prefix = aws.String(p.config.Prefix)
	}
	if !p.firstPage && p.continuationToken != nil {
		input.ContinuationToken = p.continuationToken
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects page: %w", err)
	}

	p.firstPage = false
	p.hasMorePages = aws.ToBool(output.IsTruncated) && output.NextContinuationToken != nil
	p.continuationToken = output.NextContinuationToken

	return convertOutput(output), nil
}

// convertOutput converts S3 output to our Page type.
func convertOutput(output *s3.ListObjectsV2Output) *Page {
	page := &Page{
		Objects:     make([]logtypes.Object, 0, len(output.Contents)),
		IsTruncated: aws.ToBool(output.IsTruncated),
	}

	if output.NextContinuationToken != nil {
		page.ContinuationToken = *output.NextContinuationToken
	}

	for _, obj := range output.Contents {
		page.Objects = append(page.Objects, logtypes.Object{
			Key:       aws.ToString(obj.Key),
			Size:      aws.ToInt64(obj.Size),
			CreatedAt: aws.ToTime(obj.LastModified).UTC(),
			ETag:      aws.ToString(obj.ETag),
		})
	}

	return page
}

// optimalPageSize determines the page size for pagination.
func optimalPageSize(config *ListConfig) int32 {
	if config.PageSize > 0 && config.PageSize <= maxPageSize {
		return config.PageSize
	}
	return maxPageSize
}
