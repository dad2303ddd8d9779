package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// 通过可替换的函数指针，让测试能稳定模拟 rename 失败。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// File 是一次提交中的一个输出文件（Path 为最终路径）。
type File struct {
	Path string
	Data []byte
}

// WriteFileAtomic 原子写入单个文件（临时文件 + rename，覆盖同名文件）。
func WriteFileAtomic(path string, data []byte) error {
	return CommitFiles([]File{{Path: path, Data: data}})
}

// CommitFiles 把一批文件作为整体落盘。
//
// 步骤：
//  1. 预检所有目标路径（不能是目录或特殊文件）
//  2. 在各自目录写出全部临时文件并 fsync
//  3. 依次 rename 到最终文件名
//
// 1、2 任一步失败时不会产生任何最终文件，临时文件全部清理。
// rename 本身在同目录内是原子的；若第 3 步中途失败，已完成的 rename 保留，剩余临时文件清理。
func CommitFiles(files []File) error {
	for _, f := range files {
		if err := checkTarget(f.Path); err != nil {
			return err
		}
	}

	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range temps {
			_ = os.Remove(t)
		}
	}
	for _, f := range files {
		tmp, err := writeTemp(f)
		if err != nil {
			cleanup()
			return err
		}
		temps = append(temps, tmp)
	}

	dirs := make(map[string]struct{}, len(files))
	for i, f := range files {
		if err := renameFunc(temps[i], f.Path); err != nil {
			temps = temps[i:]
			cleanup()
			return fmt.Errorf("提交 %q 失败：%w", f.Path, err)
		}
		dirs[filepath.Dir(f.Path)] = struct{}{}
	}
	for d := range dirs {
		// 目录 fsync：best-effort（不同平台/文件系统的语义差异很大）。
		_ = syncDirBestEffort(d)
	}
	return nil
}

func checkTarget(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if fi.IsDir() {
		return &PathTypeConflictError{Path: path, Want: "file", Got: "dir"}
	}
	if !fi.Mode().IsRegular() {
		return &PathTypeConflictError{Path: path, Want: "regular file", Got: fi.Mode().Type().String()}
	}
	return nil
}

// writeTemp 在目标同目录创建临时文件（前缀带 '.'），返回临时文件路径。
func writeTemp(f File) (string, error) {
	dir, name := filepath.Split(filepath.Clean(f.Path))
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}

	if err := writeAll(tmp, f.Data); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
