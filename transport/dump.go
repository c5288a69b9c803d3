package transport

import (
	"bytes"
	"fmt"
	"net/http"
)

// dumpRequest renders the raw bytes of req (as it will be sent) for
// trail "detail" events, standing in for curl's CURLINFO_HEADER_OUT /
// CURLINFO_DATA_OUT debug callback. Built by hand rather than via
// net/http/httputil.DumpRequestOut to avoid that helper's fake round
// trip through a throwaway connection.
func dumpRequest(req *http.Request, body []byte) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s %s HTTP/1.1\r\n", req.Method, req.URL.RequestURI())
	fmt.Fprintf(&buf, "Host: %s\r\n", req.Host)

	for name, values := range req.Header {
		for _, v := range values {
			fmt.Fprintf(&buf, "%s: %s\r\n", name, v)
		}
	}

	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes()
}

// dumpResponse renders the raw bytes of resp for trail "detail"
// events, standing in for CURLINFO_HEADER_IN / CURLINFO_DATA_IN.
func dumpResponse(resp *http.Response, body []byte) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "HTTP/%d.%d %s\r\n", resp.ProtoMajor, resp.ProtoMinor, resp.Status)

	for name, values := range resp.Header {
		for _, v := range values {
			fmt.Fprintf(&buf, "%s: %s\r\n", name, v)
		}
	}

	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes()
}
