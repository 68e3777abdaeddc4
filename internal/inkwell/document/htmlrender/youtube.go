package htmlrender

import "regexp"

// Идентификатор видео YouTube - ровно 11 символов.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID извлекает идентификатор видео из полного watch-URL,
// короткого youtu.be или embed-URL. Если извлечь не удалось, вызывающая
// сторона использует сохраненный src как есть, чтобы не ломать
// воспроизведение.
func ExtractVideoID(src string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(src); m != nil {
			return m[1], true
		}
	}
	return "", false
}
