package gcp

import "testing"

func TestSplitGCSPath(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		bucket     string
		object     string
		shouldFail bool
	}{
		{name: "simple", in: "gs://my-bucket/contract.pdf", bucket: "my-bucket", object: "contract.pdf"},
		{name: "nested_object", in: "gs://b/uploads/2025/c.pdf", bucket: "b", object: "uploads/2025/c.pdf"},
		{name: "no_scheme", in: "my-bucket/contract.pdf", shouldFail: true},
		{name: "bucket_only", in: "gs://my-bucket", shouldFail: true},
		{name: "trailing_slash_only", in: "gs://my-bucket/", shouldFail: true},
		{name: "empty", in: "", shouldFail: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bucket, object, err := SplitGCSPath(tc.in)
			if tc.shouldFail {
				if err == nil {
					t.Fatalf("SplitGCSPath(%q) should fail", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitGCSPath(%q): %v", tc.in, err)
			}
			if bucket != tc.bucket || object != tc.object {
				t.Fatalf("SplitGCSPath(%q)=(%q,%q), want (%q,%q)", tc.in, bucket, object, tc.bucket, tc.object)
			}
		})
	}
}
