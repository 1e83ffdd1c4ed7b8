package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// readPassword is swappable in tests.
var readPassword = term.ReadPassword

// promptPassword reads the account password without echo.
func promptPassword(username string) (string, error) {
	fmt.Fprintf(os.Stderr, "password for %s: ", username)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// promptChallenge asks the user to solve the pin image saved at path.
func promptChallenge(path string) (string, error) {
	fmt.Fprintf(os.Stderr, "verification pin required, image saved to:\n  %s\npin: ", path)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// resolveIdentity builds the identity from the --username flag, taking the
// password from --password or prompting for it. An empty username means
// anonymous.
func resolveIdentity() (domain.Identity, error) {
	if username == "" {
		return domain.Identity{}, nil
	}
	pw := password
	if pw == "" {
		var err error
		pw, err = promptPassword(username)
		if err != nil {
			return domain.Identity{}, err
		}
	}
	return domain.Identity{Username: username, Password: pw}, nil
}
