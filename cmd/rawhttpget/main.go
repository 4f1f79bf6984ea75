// Command rawhttpget performs a single GET against a URL argument and
// prints the status line, headers, and body, using the same plain
// log.Printf style the library's demo programs always used.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/WhileEndless/go-rawhttp/v2/pkg/client"
)

func main() {
	proxy := flag.String("proxy", "", "proxy URL (http://, socks5://, or socks5h://)")
	timeout := flag.Duration("timeout", 10*time.Second, "overall request timeout")
	maxRedirects := flag.Int("max-redirects", 10, "maximum redirects to follow")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: rawhttpget [flags] <url>")
	}
	target := flag.Arg(0)

	builder := client.NewBuilder().Get(target).Timeout(*timeout).MaxRedirects(*maxRedirects)
	if *proxy != "" {
		builder = builder.Proxy(*proxy)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := builder.Build(ctx)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	defer c.Close()

	resp, err := c.Send(ctx)
	if err != nil {
		log.Fatalf("send: %v", err)
	}

	log.Printf("%s %d %s", resp.Status.Version, resp.Status.Code.AsU16(), resp.Status.Reason)
	resp.Headers.Each(func(name, value string) {
		log.Printf("%s: %s", name, value)
	})
	log.Printf("redirects followed: %d", c.Redirects())
	log.Printf("body (%d bytes): %s", len(resp.Body), resp.Text())
}
