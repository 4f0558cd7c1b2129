package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.jpg", want: "user/file.jpg"},
		{name: "simple prefix", prefix: "root", key: "user/file.jpg", want: "root/user/file.jpg"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.jpg", want: "root/user/file.jpg"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.jpg", want: "root/user/file.jpg"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.jpg", want: "root/sub/user/file.jpg"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
