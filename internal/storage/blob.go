package storage

import (
	"fmt"
	"io"
	"path"
)

// BlobStore holds uploaded answer files for file_upload questions.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}

// AnswerKey builds the canonical blob key for one question's uploaded answer.
// One file per (submission, question); re-uploading overwrites.
func AnswerKey(submissionID, questionID, filename string) string {
	ext := path.Ext(filename)
	return fmt.Sprintf("answers/%s/%s%s", submissionID, questionID, ext)
}
