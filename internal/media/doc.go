// Package media resolves video identity and metadata through yt-dlp.
package media
