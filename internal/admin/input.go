package admin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

const (
	minPasswordLen   = 8
	maxPasswordBytes = 72
)

var errPasswordMismatch = errors.New("passwords do not match")

// promptPassword reads a password twice without echo and checks its length.
// The caller owns the returned slice and should wipe it.
func promptPassword(w io.Writer) ([]byte, error) {
	pw, err := readOnce(w, "Enter password: ")
	if err != nil {
		return nil, err
	}

	confirm, err := readOnce(w, "Repeat password: ")
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		common.WipeByteArray(pw)
		return nil, errPasswordMismatch
	}
	if len(pw) < minPasswordLen || len(pw) > maxPasswordBytes {
		common.WipeByteArray(pw)
		return nil, fmt.Errorf("password must be %d to %d bytes long", minPasswordLen, maxPasswordBytes)
	}

	return pw, nil
}

func readOnce(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
