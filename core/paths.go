package core

import (
	"path"
	"strconv"
	"strings"
)

// SplitBlobPath breaks a container-qualified blob path into file name, extension,
// and directory. The container segment is dropped. The directory keeps a trailing
// slash, or is empty when the blob sits at the container root.
//
//	SplitBlobPath("upload/a/b/cat.png") // "cat", ".png", "a/b/"
func SplitBlobPath(blobPath string) (name, ext, dir string) {
	rel := blobPath
	if i := strings.Index(rel, "/"); i >= 0 {
		rel = rel[i+1:]
	}
	base := path.Base(rel)
	ext = path.Ext(base)
	name = strings.TrimSuffix(base, ext)
	if d := path.Dir(rel); d != "." && d != "/" {
		dir = d + "/"
	}
	return name, ext, dir
}

// ChunkFilePath returns the content-store path of chunk n for a source file.
func ChunkFilePath(dir, name, ext string, n int) string {
	return dir + name + ext + "/" + name + "-" + strconv.Itoa(n) + ".json"
}

// Folder returns the index folder value for a directory produced by SplitBlobPath.
func Folder(dir string) string {
	return strings.TrimSuffix(dir, "/")
}
