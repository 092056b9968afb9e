package platform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var globalActionNames = map[string]int{
	"back":           GlobalActionBack,
	"home":           GlobalActionHome,
	"recents":        GlobalActionRecents,
	"notifications":  GlobalActionNotifications,
	"quick-settings": GlobalActionQuickSettings,
	"power-dialog":   GlobalActionPowerDialog,
	"split-screen":   GlobalActionSplitScreen,
	"lock-screen":    GlobalActionLockScreen,
	"screenshot":     GlobalActionScreenshot,
}

// ParseGlobalAction accepts an action name (case-insensitive, "_" or "-")
// or a numeric code. Numeric codes are passed through unchecked.
func ParseGlobalAction(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	key := strings.ReplaceAll(strings.ToLower(s), "_", "-")
	if id, ok := globalActionNames[key]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown global action %q (use %s, or a numeric code)", s, strings.Join(GlobalActionNames(), ", "))
}

// GlobalActionNames returns the accepted action names, sorted.
func GlobalActionNames() []string {
	names := make([]string, 0, len(globalActionNames))
	for n := range globalActionNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
