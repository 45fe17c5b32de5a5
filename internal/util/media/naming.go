package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediafetch/internal/model"
	"mediafetch/internal/util"
)

// NamingPrefix builds the per-job filename prefix
// u<user>-c<chat>-<unix millis>-<token>. Concurrent jobs from the same
// caller differ by timestamp and the random token.
func NamingPrefix(userID, chatID string, now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strings.Join([]string{
		"u" + prefixPart(userID),
		"c" + prefixPart(chatID),
		fmt.Sprint(now.UnixMilli()),
		token,
	}, "-")
}

func prefixPart(s string) string {
	if s == "" {
		return "0"
	}
	return strings.ReplaceAll(util.SanitizeFilename(s), "-", "_")
}

// OutputTemplate is the yt-dlp -o value for a job writing into dir.
func OutputTemplate(dir, prefix string) string {
	return filepath.Join(dir, prefix+" - %(title).100s - %(id)s.%(ext)s")
}

// Title derives a display title from an artifact file name by dropping
// the extension.
func Title(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Performer labels a delivered artifact, e.g. "YouTube Audio".
func Performer(p util.Platform, mode model.Mode) string {
	if mode == model.ModeAudio {
		return p.Label() + " Audio"
	}
	return p.Label() + " Video"
}
