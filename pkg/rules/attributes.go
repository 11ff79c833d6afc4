package rules

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// ModeChanged ensures that the file or directory carries exactly the
// given permission bits.
func ModeChanged(name, path string, mode os.FileMode, opts ...engine.RuleOption) (*engine.Rule, error) {
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if info.Mode().Perm() == mode.Perm() {
			return target, nil
		}
		ex.Log().Debug("changing mode",
			zap.String("path", target),
			zap.String("mode", mode.Perm().String()),
		)
		if err := os.Chmod(target, mode.Perm()); err != nil {
			return nil, err
		}
		ex.Changes().Add(target)
		return target, nil
	}, opts...)
}

// OwnerChanged ensures that the file or directory is owned by the given
// "user", ":group" or "user:group" specification.
func OwnerChanged(name, path, owner string, opts ...engine.RuleOption) (*engine.Rule, error) {
	userName, groupName, err := splitOwner(owner)
	if err != nil {
		return nil, &engine.ConfigurationError{Reason: err.Error()}
	}

	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		uid, gid, err := resolveOwner(userName, groupName)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if stat, ok := info.Sys().(*syscall.Stat_t); ok {
			currentUID, currentGID := int(stat.Uid), int(stat.Gid)
			if (uid < 0 || uid == currentUID) && (gid < 0 || gid == currentGID) {
				return target, nil
			}
		}
		ex.Log().Debug("changing owner",
			zap.String("path", target),
			zap.String("owner", owner),
		)
		if err := os.Chown(target, uid, gid); err != nil {
			return nil, err
		}
		ex.Changes().Add(target)
		return target, nil
	}, opts...)
}

// splitOwner parses "user", ":group" or "user:group". At least one side
// must be present.
func splitOwner(owner string) (string, string, error) {
	userName, groupName, _ := strings.Cut(owner, ":")
	userName = strings.TrimSpace(userName)
	groupName = strings.TrimSpace(groupName)
	if userName == "" && groupName == "" {
		return "", "", fmt.Errorf("owner %q: expected user, :group or user:group", owner)
	}
	return userName, groupName, nil
}

// resolveOwner maps names to numeric ids. A missing side resolves to -1,
// which chown interprets as "leave unchanged".
func resolveOwner(userName, groupName string) (int, int, error) {
	uid, gid := -1, -1
	if userName != "" {
		u, err := user.Lookup(userName)
		if err != nil {
			return 0, 0, err
		}
		uid, err = strconv.Atoi(u.Uid)
		if err != nil {
			return 0, 0, err
		}
	}
	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return 0, 0, err
		}
		gid, err = strconv.Atoi(g.Gid)
		if err != nil {
			return 0, 0, err
		}
	}
	return uid, gid, nil
}
