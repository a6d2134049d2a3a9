package lambdaboot

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSM struct {
	params map[string]string
	asked  []string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(in.Name)
	f.asked = append(f.asked, name)
	v, ok := f.params[name]
	if !ok {
		return nil, errors.New("ParameterNotFound")
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func TestLoadGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SSM_API_KEY_PARAM", "/test/key")
	client := &fakeSSM{params: map[string]string{"/test/key": "secret"}}

	LoadGeminiKey(client)
	if got := os.Getenv("GEMINI_API_KEY"); got != "secret" {
		t.Errorf("GEMINI_API_KEY = %q, want secret", got)
	}

	// Already set: SSM is not consulted.
	client.asked = nil
	LoadGeminiKey(client)
	if len(client.asked) != 0 {
		t.Errorf("SSM asked for %v with the key already set", client.asked)
	}
}

func TestLoadVertexConfig(t *testing.T) {
	tests := []struct {
		name       string
		project    string
		token      string
		params     map[string]string
		configured bool
	}{
		{"no project", "", "", nil, false},
		{"token from env", "p", "env-token", nil, true},
		{"token from ssm", "p", "", map[string]string{DefaultVertexTokenParam: "ssm-token"}, true},
		{"token missing", "p", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VERTEX_AI_PROJECT", tt.project)
			t.Setenv("VERTEX_AI_TOKEN", tt.token)
			t.Setenv("VERTEX_AI_REGION", "")
			t.Setenv("SSM_VERTEX_TOKEN_PARAM", "")
			cfg := LoadVertexConfig(&fakeSSM{params: tt.params})
			if cfg.Configured() != tt.configured {
				t.Errorf("Configured() = %v, want %v (%+v)", cfg.Configured(), tt.configured, cfg)
			}
			if cfg.Region != "us-central1" {
				t.Errorf("Region = %q, want default", cfg.Region)
			}
		})
	}
}
