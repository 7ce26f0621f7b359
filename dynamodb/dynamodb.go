// Package dynamodb is the DynamoDB-backed movie store.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var (
	errRegionRequired = errors.New("dynamodb: region is required")
	errKeyPair        = errors.New("dynamodb: access key and secret key must be set together")
	errTableRequired  = errors.New("dynamodb: table name is required")
)

type Options struct {
	Region string
	// Endpoint overrides the AWS endpoint, e.g. for DynamoDB Local.
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
}

func NewClient(ctx context.Context, opts Options) (*dynamodb.Client, error) {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		return nil, errRegionRequired
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}
	creds, err := staticCredentials(opts)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(creds))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// staticCredentials returns nil when no key is configured so the default
// provider chain applies.
func staticCredentials(opts Options) (aws.CredentialsProvider, error) {
	if opts.AccessKey == "" && opts.SecretKey == "" && opts.SessionToken == "" {
		return nil, nil
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errKeyPair
	}
	return credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken), nil
}

func validateTable(table string) error {
	if strings.TrimSpace(table) == "" {
		return errTableRequired
	}
	return nil
}

// Ping checks that the movies table is reachable.
func (r *MovieRepository) Ping(ctx context.Context) error {
	if err := validateTable(r.table); err != nil {
		return err
	}
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &r.table})
	if err != nil {
		return fmt.Errorf("dynamodb: describe table: %w", err)
	}
	return nil
}
