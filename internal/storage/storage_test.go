package storage

import (
	"testing"

	"github.com/Randomizando3/DramaBoxV2/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadURLEscapesObjectPath(t *testing.T) {
	got := DownloadURL("dramabox.appspot.com", "community/u1/series/s1/cover.jpg", "tok-1")
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/dramabox.appspot.com/o/community%2Fu1%2Fseries%2Fs1%2Fcover.jpg?alt=media&token=tok-1",
		got)

	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/b/o/users%2Fu%2Fprofile.jpg?alt=media",
		DownloadURL("b", "users/u/profile.jpg", ""))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentType("ep.MP4"))
	assert.Equal(t, "image/jpeg", ContentType("cover.jpeg"))
	assert.Equal(t, "image/png", ContentType("cover.png"))
	assert.Equal(t, "application/octet-stream", ContentType("notes.txt"))
}

func TestR2PublicURL(t *testing.T) {
	client, err := NewR2Client(config.R2Config{
		AccountID:  "acc",
		AccessKey:  "k",
		SecretKey:  "s",
		BucketName: "media",
		PublicURL:  "https://cdn.example.com/",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/users/u1/profile.jpg", client.GetPublicURL("users/u1/profile.jpg"))
}
