package imageurl_test

import (
	"fmt"
	"hash/crc32"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consatan/weibo-image-uploader/internal/domain"
	"github.com/consatan/weibo-image-uploader/internal/imageurl"
)

const (
	jpgPID = "006G4wrfgy1fjmhmzonwyj30dw09mjsj"
	// index 21 is 'g', so this pid resolves to a gif
	gifPID = "a1b2c3d4e5f6a1b2c3d4eg6a1b2c3d4e"
)

func TestResolvePIDDeterministic(t *testing.T) {
	first, err := imageurl.Resolve(jpgPID, imageurl.SizeLarge, true)
	require.NoError(t, err)
	second, err := imageurl.Resolve(jpgPID, imageurl.SizeLarge, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	shard := (crc32.ChecksumIEEE([]byte(jpgPID)) & 3) + 1
	want := fmt.Sprintf("https://ws%d.sinaimg.cn/large/%s.jpg", shard, jpgPID)
	assert.Equal(t, want, first)
}

func TestResolvePIDInsecureScheme(t *testing.T) {
	u, err := imageurl.Resolve(jpgPID, imageurl.SizeSmall, false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://ww"), u)
	assert.Contains(t, u, "/small/")
}

func TestResolvePIDGifExtension(t *testing.T) {
	u, err := imageurl.Resolve(gifPID, imageurl.SizeLarge, true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u, ".gif"), u)
}

func TestResolveShardInRange(t *testing.T) {
	for _, pid := range []string{jpgPID, gifPID, strings.Repeat("z", 32)} {
		u, err := imageurl.Resolve(pid, imageurl.SizeLarge, true)
		require.NoError(t, err)
		shard := u[len("https://ws") : len("https://ws")+1]
		assert.Contains(t, []string{"1", "2", "3", "4"}, shard, u)
	}
}

func TestResolveURLRewritesOnlySizeSegment(t *testing.T) {
	in := "https://ws2.sinaimg.cn/large/" + strings.ToLower(jpgPID) + ".jpg"
	u, err := imageurl.Resolve(in, imageurl.SizeSquare, true)
	require.NoError(t, err)
	assert.Equal(t, "https://ws2.sinaimg.cn/square/"+strings.ToLower(jpgPID)+".jpg", u)

	// The shard in the input is preserved, not recomputed.
	assert.True(t, strings.HasPrefix(u, "https://ws2."))
}

func TestResolveURLIdempotent(t *testing.T) {
	in := "http://ww4.sinaimg.cn/thumbnail/" + strings.ToLower(jpgPID) + ".jpg"
	once, err := imageurl.Resolve(in, imageurl.SizeMW690, true)
	require.NoError(t, err)
	twice, err := imageurl.Resolve(once, imageurl.SizeMW690, true)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestResolvePreservesPIDCase(t *testing.T) {
	u, err := imageurl.Resolve(jpgPID, imageurl.SizeLarge, true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u, "/"+jpgPID+".jpg"), u)
	assert.NotContains(t, u, strings.ToLower(jpgPID))

	// a mixed-case filename in an existing URL survives a size rewrite
	in := "https://ws2.sinaimg.cn/large/" + jpgPID + ".jpg"
	out, err := imageurl.Resolve(in, imageurl.SizeSquare, true)
	require.NoError(t, err)
	assert.Equal(t, "https://ws2.sinaimg.cn/square/"+jpgPID+".jpg", out)
}

func TestResolveUnknownSizeFallsBackToLarge(t *testing.T) {
	u, err := imageurl.Resolve(jpgPID, "gigantic", true)
	require.NoError(t, err)
	assert.Contains(t, u, "/large/")
}

func TestResolveSizeAliases(t *testing.T) {
	u, err := imageurl.Resolve(jpgPID, "middle", true)
	require.NoError(t, err)
	assert.Contains(t, u, "/bmiddle/")

	u, err = imageurl.Resolve(jpgPID, "orignal", true)
	require.NoError(t, err)
	assert.Contains(t, u, "/large/")
}

func TestResolveRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{
		"",
		"short",
		strings.Repeat("a", 33),
		"https://example.com/large/" + strings.ToLower(jpgPID) + ".jpg",
		"https://ws1.sinaimg.cn/huge/" + strings.ToLower(jpgPID) + ".jpg",
		"https://ws1.sinaimg.cn/large/" + strings.ToLower(jpgPID) + ".png",
	} {
		_, err := imageurl.Resolve(in, imageurl.SizeLarge, true)
		require.Error(t, err, in)
		assert.True(t, domain.IsCode(err, domain.CodeInvalidInput), in)
	}
}

func TestKnownSize(t *testing.T) {
	assert.True(t, imageurl.KnownSize("large"))
	assert.True(t, imageurl.KnownSize(" Thumb180 "))
	assert.False(t, imageurl.KnownSize("gigantic"))
}
