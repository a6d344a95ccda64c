package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/maruel/natural"

	"statsnap/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report archive. When destination cannot be created
// temporary file is used.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	r.file = f
	return r, nil
}

type entry struct {
	original string    // path as given
	actual   string    // absolute path or snapshot location
	stamp    time.Time // zero for live paths
	data     []byte
}

// Report accumulates files, directories and data for debug archive written on
// Close. Nil report is valid and ignores everything. Not safe for concurrent
// use.
type Report struct {
	entries map[string]entry
	file    *os.File
	tmp     []string
}

// Close writes the archive and removes snapshot copies.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer func() {
		for _, dir := range r.tmp {
			_ = os.RemoveAll(dir)
		}
	}()
	defer r.file.Close()
	return r.finalize()
}

// Name returns absolute name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store records file or directory to be archived as it is at Close time.
// Absent paths are skipped then.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if old, exists := r.entries[name]; exists && old.original != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.original, path))
	}
	e := entry{original: path, actual: path}
	if p, err := filepath.Abs(path); err == nil {
		e.actual = p
	}
	r.entries[name] = e
}

// StoreData records data to be archived under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCopy snapshots file or directory now. Repeated names get timestamp
// suffix.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}
	src, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	e := entry{original: path, stamp: time.Now()}
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}

	dir, err := os.MkdirTemp("", misc.GetAppName()+"-r-")
	if err != nil {
		return err
	}
	r.tmp = append(r.tmp, dir)

	switch {
	case info.Mode().IsRegular():
		dst := filepath.Join(dir, filepath.Base(src))
		if err := copyFile(dst, src, info.ModTime()); err != nil {
			return err
		}
		e.actual = dst
	case info.IsDir():
		if err := os.CopyFS(dir, os.DirFS(src)); err != nil {
			return err
		}
		e.actual = dir
	default:
		return fmt.Errorf("unable to copy %s: not a regular file or directory", path)
	}
	r.entries[name] = e
	return nil
}

func copyFile(dst, src string, modTime time.Time) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, modTime, modTime)
}

// finalize writes manifest followed by entries in manifest order.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names, manifest := prepareManifest(r.entries, time.Now())
	if err := saveFile(arc, "MANIFEST", time.Now(), bytes.NewReader(manifest)); err != nil {
		return err
	}
	for _, name := range names {
		e := r.entries[name]
		if len(e.data) > 0 {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(e.actual)
		if err != nil {
			continue
		}
		switch {
		case info.Mode().IsRegular():
			err = savePath(arc, name, e.actual, info.ModTime())
		case info.IsDir():
			err = saveDir(arc, name, e.actual)
		}
		if err != nil {
			return err
		}
	}
	return arc.Close()
}

// prepareManifest returns entry names in natural order ("page_2" before
// "page_10") and manifest text listing them.
func prepareManifest(entries map[string]entry, now time.Time) ([]string, []byte) {
	names := make([]string, 0, len(entries))
	for k := range entries {
		names = append(names, k)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	buf := new(bytes.Buffer)
	for _, k := range names {
		e := entries[k]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", stamp.UTC().Format(time.UnixDate), k, e.original, e.actual)
	}
	return names, buf.Bytes()
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func savePath(dst *zip.Writer, name, path string, t time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, t, f)
}

func saveDir(dst *zip.Writer, name, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return savePath(dst, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}
