package auth

import (
	"testing"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

	tests := []struct {
		name      string
		in        string
		wantKind  IdentifierKind
		wantID    uuid.UUID
		wantEmail string
		wantErr   bool
	}{
		{name: "uuid", in: id.String(), wantKind: IdentifierID, wantID: id},
		{name: "uuid upper", in: "0F8FAD5B-D9CB-469F-A165-70867728950E", wantKind: IdentifierID, wantID: id},
		{name: "uuid padded", in: "  " + id.String() + " ", wantKind: IdentifierID, wantID: id},
		{name: "email", in: "ada@example.com", wantKind: IdentifierEmail, wantEmail: "ada@example.com"},
		{name: "email is lowercased", in: "Ada.Lovelace@Example.COM", wantKind: IdentifierEmail, wantEmail: "ada.lovelace@example.com"},
		{name: "empty", in: "", wantErr: true},
		{name: "plain word", in: "ada", wantErr: true},
		{name: "display name form", in: "Ada <ada@example.com>", wantErr: true},
		{name: "broken uuid", in: "0f8fad5b-d9cb-469f-a165", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentifier(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind())

			gotID, isID := got.ID()
			gotEmail, isEmail := got.Email()
			assert.Equal(t, tt.wantKind == IdentifierID, isID)
			assert.Equal(t, tt.wantKind == IdentifierEmail, isEmail)
			if isID {
				assert.Equal(t, tt.wantID, gotID)
				assert.Equal(t, tt.wantID.String(), got.String())
			}
			if isEmail {
				assert.Equal(t, tt.wantEmail, gotEmail)
			}
		})
	}
}
