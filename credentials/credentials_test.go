package credentials

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/testutil"
)

type mockManager struct {
	output *secretsmanager.GetSecretValueOutput
	err    error
	gotID  string
}

func (m *mockManager) GetSecretValue(
	_ context.Context,
	params *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	m.gotID = aws.ToString(params.SecretId)
	return m.output, m.err
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		mock    *mockManager
		want    Credentials
		wantErr error
		code    errors.ErrorCode
	}{
		{
			name: "camel case keys",
			mock: &mockManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String(`{"accessKey":"AKIA","secretKey":"s3cr3t"}`),
			}},
			want: Credentials{AccessKey: "AKIA", SecretKey: "s3cr3t"},
		},
		{
			name: "aws spelling in binary secret",
			mock: &mockManager{output: &secretsmanager.GetSecretValueOutput{
				SecretBinary: []byte(`{"aws_access_key_id":"AKIB","aws_secret_access_key":"other"}`),
			}},
			want: Credentials{AccessKey: "AKIB", SecretKey: "other"},
		},
		{
			name: "aws spelling with session token",
			mock: &mockManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String(`{"aws_access_key_id":"AK","aws_secret_access_key":"SK","aws_session_token":"TOKEN"}`),
			}},
			want: Credentials{AccessKey: "AK", SecretKey: "SK", SessionToken: "TOKEN"},
		},
		{
			name: "camel case with session token",
			mock: &mockManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String(`{"accessKey":"AK","secretKey":"SK","sessionToken":"TOKEN"}`),
			}},
			want: Credentials{AccessKey: "AK", SecretKey: "SK", SessionToken: "TOKEN"},
		},
		{
			name:    "not found",
			mock:    &mockManager{err: &smithy.GenericAPIError{Code: ResourceNotFoundException}},
			wantErr: ErrSecretNotFound,
			code:    errors.CodeNotFound,
		},
		{
			name:    "access denied",
			mock:    &mockManager{err: &smithy.GenericAPIError{Code: AccessDeniedException}},
			wantErr: errors.ErrAccessDenied,
			code:    errors.CodeAccessDenied,
		},
		{
			name:    "empty",
			mock:    &mockManager{output: &secretsmanager.GetSecretValueOutput{}},
			wantErr: ErrSecretEmpty,
			code:    errors.CodeInvalidConfig,
		},
		{
			name: "not json",
			mock: &mockManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String("AKIA:s3cr3t"),
			}},
			wantErr: ErrMalformedSecret,
			code:    errors.CodeParseFailed,
		},
		{
			name: "missing secret key",
			mock: &mockManager{output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String(`{"accessKey":"AKIA"}`),
			}},
			wantErr: ErrMalformedSecret,
			code:    errors.CodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.mock, testutil.DiscardLogger())
			got, err := r.Resolve(context.Background(), "logsync/storage")
			assert.Equal(t, "logsync/storage", tt.mock.gotID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.code, errors.CodeOf(err))
				assert.NotContains(t, err.Error(), "s3cr3t")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
