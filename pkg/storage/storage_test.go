package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    map[string][]byte
	deleted []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreUploadAndDelete(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}}
	st := newS3Store(fake, S3Options{Bucket: "proofs", Region: "ap-south-1", Folder: "/earnly/proofs/"})

	url, err := st.Upload(context.Background(), bytes.NewReader([]byte("png-bytes")), "Shot.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://proofs.s3.ap-south-1.amazonaws.com/earnly/proofs/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	require.Len(t, fake.puts, 1)

	require.NoError(t, st.Delete(context.Background(), url))
	require.Len(t, fake.deleted, 1)
	assert.Contains(t, fake.puts, fake.deleted[0])

	require.NoError(t, st.Delete(context.Background(), "https://elsewhere.example/x.png"))
	assert.Len(t, fake.deleted, 1)
}

func TestS3StorePublicURL(t *testing.T) {
	st := newS3Store(&fakeS3{puts: map[string][]byte{}}, S3Options{Bucket: "b", PublicURL: "https://cdn.example.com/"})
	url, err := st.Upload(context.Background(), strings.NewReader("x"), "a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/"))
}

func TestCheckContentType(t *testing.T) {
	assert.NoError(t, CheckContentType("image/png", AllowProof...))
	assert.NoError(t, CheckContentType("Image/JPEG; charset=binary", AllowProof...))
	assert.ErrorIs(t, CheckContentType("text/html", AllowProof...), ErrContentType)
}

func TestSniffContentType(t *testing.T) {
	png := bytes.NewReader([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"))
	ct, err := SniffContentType(png, AllowProof...)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	rest, err := io.ReadAll(png)
	require.NoError(t, err)
	assert.Equal(t, byte(0x89), rest[0], "reader is rewound for the upload")

	pdf := bytes.NewReader([]byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n"))
	ct, err = SniffContentType(pdf, AllowProof...)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)

	// an HTML page renamed to .png is still HTML
	_, err = SniffContentType(strings.NewReader("<html><body>not a screenshot</body></html>"), AllowProof...)
	assert.ErrorIs(t, err, ErrContentType)
}

func TestCloudinaryPublicIDFromURL(t *testing.T) {
	c := &CloudinaryStore{cloudName: "demo"}
	assert.Equal(t, "earnly/proofs/abc", c.publicIDFromURL("https://res.cloudinary.com/demo/image/upload/v1712/earnly/proofs/abc.jpg"))
	assert.Equal(t, "verify/abc", c.publicIDFromURL("https://res.cloudinary.com/demo/image/upload/verify/abc.png"))
	assert.Equal(t, "", c.publicIDFromURL("https://res.cloudinary.com/other/image/upload/v1/abc.jpg"))
}
