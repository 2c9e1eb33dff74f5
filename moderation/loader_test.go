package moderation

import (
	"chat-room/errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)
	fsys := fstest.MapFS{
		"words/en.txt":     {Data: []byte("# comment\nbadger\r\nsnake\n\n")},
		"words/fr.txt":     {Data: []byte("blaireau\nbadger\n")},
		"words/README.md":  {Data: []byte("not a dictionary")},
		"words/sub/xx.txt": {Data: []byte("ignored")},
	}

	data, err := NewCensoredLoader(fsys).LoadAll("words")
	req.NoError(err)
	req.Equal([]string{"badger", "blaireau", "snake"}, data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_NoWords(t *testing.T) {
	req := require.New(t)
	fsys := fstest.MapFS{
		"words/en.txt": {Data: []byte("# only comments\n\n")},
	}

	_, err := NewCensoredLoader(fsys).LoadAll("words")
	req.ErrorIs(err, errors.ErrEmptyWords)
}

func TestCensoredLoader_Embedded(t *testing.T) {
	req := require.New(t)

	data, err := NewEmbeddedLoader().LoadAll("censored")
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.Contains(data.Languages, "pt")
}
