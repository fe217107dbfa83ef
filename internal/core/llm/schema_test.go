package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid", doc: `{"selected":[1]}`},
		{name: "max items", doc: `{"selected":[1,2]}`},
		{name: "too few", doc: `{"selected":[]}`, wantErr: true},
		{name: "too many", doc: `{"selected":[1,2,3]}`, wantErr: true},
		{name: "missing field", doc: `{}`, wantErr: true},
		{name: "not json", doc: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(testSchema, []byte(tt.doc))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrSchemaValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
