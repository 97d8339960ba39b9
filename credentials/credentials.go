// Package credentials resolves static storage credentials held in AWS
// Secrets Manager.
//
// The secret must be a JSON object carrying an access key and a secret key,
// either as {"accessKey": ..., "secretKey": ...} or in the AWS shared
// credentials spelling {"aws_access_key_id": ..., "aws_secret_access_key": ...}.
// Temporary credentials add "sessionToken" or "aws_session_token".
//
// Secret values are never logged; only secret identifiers are.
//
// The following IAM permissions are required:
//   - secretsmanager:GetSecretValue
//   - kms:Decrypt if the secret is encrypted with a customer-managed key
package credentials

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
)

// AWS error code constants
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

var (
	// ErrSecretNotFound is returned when the secret does not exist.
	ErrSecretNotFound = stderrors.New("secret not found")

	// ErrSecretEmpty is returned when the secret has no value.
	ErrSecretEmpty = stderrors.New("secret value is empty")

	// ErrMalformedSecret is returned when the secret lacks either key.
	ErrMalformedSecret = stderrors.New("secret does not hold an access key and secret key")
)

// ManagerAPI is the subset of the Secrets Manager client used here.
type ManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

var _ ManagerAPI = (*secretsmanager.Client)(nil)

// Credentials is a static access key pair. SessionToken is set for
// temporary credentials.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
}

type secretDocument struct {
	AccessKey       string `json:"accessKey"`
	SecretKey       string `json:"secretKey"`
	SessionToken    string `json:"sessionToken"`
	AWSAccessKey    string `json:"aws_access_key_id"`
	AWSSecretKey    string `json:"aws_secret_access_key"`
	AWSSessionToken string `json:"aws_session_token"`
}

// Resolver reads credentials from Secrets Manager.
type Resolver struct {
	api    ManagerAPI
	logger *slog.Logger
}

// NewResolver creates a Resolver around api.
func NewResolver(api ManagerAPI, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{api: api, logger: logger}
}

// New creates a Resolver from the default AWS configuration chain.
// A non-empty region overrides the chain's region.
func New(ctx context.Context, region string, logger *slog.Logger) (*Resolver, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.NewError("credentials", fmt.Errorf("failed to load AWS config: %w", err)).
			WithCode(errors.CodeInvalidConfig)
	}
	if region != "" {
		cfg.Region = region
	}
	return NewResolver(secretsmanager.NewFromConfig(cfg), logger), nil
}

// Resolve fetches and parses the secret named secretID.
func (r *Resolver) Resolve(ctx context.Context, secretID string) (Credentials, error) {
	r.logger.InfoContext(ctx, "retrieving storage credentials", "secret_name", secretID)

	output, err := r.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		var apiErr smithy.APIError
		if stderrors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case ResourceNotFoundException:
				return Credentials{}, r.fail(ctx, secretID, stderrors.Join(ErrSecretNotFound, err), errors.CodeNotFound)
			case AccessDeniedException:
				return Credentials{}, r.fail(ctx, secretID, stderrors.Join(errors.ErrAccessDenied, err), errors.CodeAccessDenied)
			}
		}
		return Credentials{}, r.fail(ctx, secretID, err, errors.CodeNetwork)
	}

	var raw []byte
	switch {
	case output.SecretString != nil:
		raw = []byte(*output.SecretString)
	case output.SecretBinary != nil:
		raw = output.SecretBinary
	}
	if len(raw) == 0 {
		return Credentials{}, r.fail(ctx, secretID, ErrSecretEmpty, errors.CodeInvalidConfig)
	}

	var doc secretDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// The decode error may quote the secret, so it is not wrapped.
		return Credentials{}, r.fail(ctx, secretID, ErrMalformedSecret, errors.CodeParseFailed)
	}

	creds := Credentials{AccessKey: doc.AccessKey, SecretKey: doc.SecretKey, SessionToken: doc.SessionToken}
	if creds.AccessKey == "" && creds.SecretKey == "" {
		creds = Credentials{
			AccessKey:    doc.AWSAccessKey,
			SecretKey:    doc.AWSSecretKey,
			SessionToken: doc.AWSSessionToken,
		}
	}
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return Credentials{}, r.fail(ctx, secretID, ErrMalformedSecret, errors.CodeInvalidConfig)
	}

	r.logger.InfoContext(ctx, "storage credentials retrieved", "secret_name", secretID)
	return creds, nil
}

func (r *Resolver) fail(ctx context.Context, secretID string, err error, code errors.ErrorCode) error {
	r.logger.ErrorContext(ctx, "failed to retrieve storage credentials",
		"secret_name", secretID,
		"error", err)
	return errors.NewError("credentials", err).WithKey(secretID).WithCode(code)
}
