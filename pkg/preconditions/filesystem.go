package preconditions

import (
	"fmt"
	"os"
	"os/user"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

func pathOf(param any) (string, bool) {
	switch v := param.(type) {
	case string:
		return v, v != ""
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// IsFileExists holds when the candidate path is an existing regular
// file.
func IsFileExists() engine.Precondition {
	return engine.NewPrecondition("is_file_exists", func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	})
}

// IsFileNotExists holds when the candidate path does not exist.
func IsFileNotExists() engine.Precondition {
	return engine.NewPrecondition("is_file_not_exists", func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
}

// IsDirectoryExists holds when the candidate path is an existing
// directory.
func IsDirectoryExists() engine.Precondition {
	return engine.NewPrecondition("is_directory_exists", func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}
		info, err := os.Stat(path)
		return err == nil && info.IsDir()
	})
}

// IsDirectoryNotExists holds when the candidate path does not exist.
func IsDirectoryNotExists() engine.Precondition {
	return engine.NewPrecondition("is_directory_not_exists", func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
}

// IsLineExists holds when any line of the candidate file matches the
// pattern.
func IsLineExists(pattern string) (engine.Precondition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil || pattern == "" {
		return nil, &engine.ConfigurationError{Reason: fmt.Sprintf("IsLineExists pattern %q: invalid regexp", pattern)}
	}
	return engine.NewPrecondition("is_line_exists", func(param any) bool {
		return anyLineMatches(param, re)
	}), nil
}

// IsLineNotExists holds when no line of the candidate file matches the
// pattern. A file that cannot be read evaluates false.
func IsLineNotExists(pattern string) (engine.Precondition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil || pattern == "" {
		return nil, &engine.ConfigurationError{Reason: fmt.Sprintf("IsLineNotExists pattern %q: invalid regexp", pattern)}
	}
	return engine.NewPrecondition("is_line_not_exists", func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		for _, line := range strings.Split(string(content), "\n") {
			if re.MatchString(line) {
				return false
			}
		}
		return true
	}), nil
}

func anyLineMatches(param any, re *regexp.Regexp) bool {
	path, ok := pathOf(param)
	if !ok {
		return false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// HasMode holds when every given permission bit is set on the candidate
// path.
func HasMode(mode os.FileMode) engine.Precondition {
	return engine.NewPrecondition("has_mode", func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		return info.Mode().Perm()&mode.Perm() == mode.Perm()
	})
}

// HasNoMode holds when none of the given permission bits is set on the
// candidate path.
func HasNoMode(mode os.FileMode) engine.Precondition {
	return engine.NewPrecondition("has_no_mode", func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		return info.Mode().Perm()&mode.Perm() == 0
	})
}

// IsOwnedBy holds when the candidate path is owned by the given "user",
// ":group" or "user:group" specification.
func IsOwnedBy(owner string) engine.Precondition {
	return engine.NewPrecondition("is_owned_by", func(param any) bool {
		matched, ok := ownerMatches(param, owner)
		return ok && matched
	})
}

// IsNotOwnedBy holds when the candidate path exists and is not owned by
// the given specification.
func IsNotOwnedBy(owner string) engine.Precondition {
	return engine.NewPrecondition("is_not_owned_by", func(param any) bool {
		matched, ok := ownerMatches(param, owner)
		return ok && !matched
	})
}

// ownerMatches reports whether the path's owner matches the "user:group"
// expression. The second return is false when the path or the owner
// cannot be inspected.
func ownerMatches(param any, owner string) (bool, bool) {
	path, ok := pathOf(param)
	if !ok {
		return false, false
	}
	userName, groupName, found := strings.Cut(owner, ":")
	userName = strings.TrimSpace(userName)
	if found {
		groupName = strings.TrimSpace(groupName)
	}
	if userName == "" && groupName == "" {
		return false, false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false, false
	}

	if userName != "" {
		u, err := user.Lookup(userName)
		if err != nil {
			return false, false
		}
		uid, err := strconv.Atoi(u.Uid)
		if err != nil {
			return false, false
		}
		if uid != int(stat.Uid) {
			return false, true
		}
	}
	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return false, false
		}
		gid, err := strconv.Atoi(g.Gid)
		if err != nil {
			return false, false
		}
		if gid != int(stat.Gid) {
			return false, true
		}
	}
	return true, true
}
