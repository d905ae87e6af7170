package enricher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/LJTian/OilNewsHub/internal/fallback"
	"github.com/LJTian/OilNewsHub/internal/webclient"
	"go.uber.org/zap"
)

var errNotLegacy = errors.New("google news: id is not a legacy encoded url")

// googleNewsResolver 把 news.google.com 的中转链接还原为原文地址
type googleNewsResolver struct {
	client *webclient.Client
	base   string
	log    *zap.Logger
}

// Resolve 失败时原样返回 link
func (r *googleNewsResolver) Resolve(ctx context.Context, link string) string {
	if !r.handles(link) {
		return link
	}
	id := articleID(link)
	if id == "" {
		return link
	}

	chain := &fallback.Chain[string]{Accept: fallback.NonEmptyString}
	chain.Then("legacy", func(context.Context) (string, error) {
		return decodeLegacyID(id)
	})
	chain.Then("batchexecute", func(ctx context.Context) (string, error) {
		return r.decodeRemote(ctx, id)
	})

	resolved, _, err := chain.Do(ctx)
	if err != nil {
		r.log.Debug("google news decode failed", zap.String("url", link), zap.Error(err))
		return link
	}
	return resolved
}

func (r *googleNewsResolver) handles(link string) bool {
	return strings.Contains(link, "news.google.com") || strings.HasPrefix(link, r.base+"/")
}

// articleID 取 /articles/<id> 或 /read/<id> 中的 id
func articleID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	switch parts[len(parts)-2] {
	case "articles", "read":
		return parts[len(parts)-1]
	}
	return ""
}

var (
	legacyPrefix = []byte{0x08, 0x13, 0x22}
	legacySuffix = []byte{0xd2, 0x01, 0x00}
)

// decodeLegacyID 旧格式的 id 是 base64 编码的 protobuf，URL 作为长度前缀字符串直接嵌在里面
func decodeLegacyID(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(id, "="))
	if err != nil {
		return "", fmt.Errorf("google news: %w", err)
	}
	raw = bytes.TrimPrefix(raw, legacyPrefix)
	raw = bytes.TrimSuffix(raw, legacySuffix)

	n, k := binary.Uvarint(raw)
	if k <= 0 {
		return "", errNotLegacy
	}
	raw = raw[k:]
	if n < uint64(len(raw)) {
		raw = raw[:n]
	}
	decoded := string(raw)
	// 新格式以 AU_yqL 开头，需要走 batchexecute
	if strings.HasPrefix(decoded, "AU_yqL") || !strings.HasPrefix(decoded, "http") {
		return "", errNotLegacy
	}
	return decoded, nil
}

// decodeRemote 先在文章页拿到签名和时间戳，再调用 batchexecute 换取原文地址
func (r *googleNewsResolver) decodeRemote(ctx context.Context, id string) (string, error) {
	sig, ts, err := r.decodingParams(ctx, id)
	if err != nil {
		return "", err
	}
	freq, err := batchRequest(id, ts, sig)
	if err != nil {
		return "", err
	}
	body, err := r.client.PostForm(ctx, r.base+"/_/DotsSplashUi/data/batchexecute", map[string]string{"f.req": freq})
	if err != nil {
		return "", err
	}
	return parseBatchResponse(body)
}

func (r *googleNewsResolver) decodingParams(ctx context.Context, id string) (sig, ts string, err error) {
	for _, page := range []string{"/articles/", "/rss/articles/"} {
		doc, gerr := r.client.GetDocument(ctx, r.base+page+id)
		if gerr != nil {
			err = gerr
			continue
		}
		node := doc.Find("c-wiz > div[jscontroller]").First()
		sig, _ = node.Attr("data-n-a-sg")
		ts, _ = node.Attr("data-n-a-ts")
		if sig != "" && ts != "" {
			return sig, ts, nil
		}
		err = errors.New("google news: decoding params not found")
	}
	return "", "", err
}

func batchRequest(id, ts, sig string) (string, error) {
	inner := fmt.Sprintf(
		`["garturlreq",[["X","X",["X","X"],null,null,1,1,"US:en",null,1,null,null,null,null,null,0,1],"X","X",1,[1,1,1],1,1,null,0,0,null,0],%q,%s,%q]`,
		id, ts, sig)
	req := [][][]any{{{"Fbv4je", inner, nil, "generic"}}}
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// parseBatchResponse 响应形如 )]}'\n\n[["wrb.fr","Fbv4je","[\"garturlres\",\"<url>\",1]",...]]
func parseBatchResponse(body []byte) (string, error) {
	parts := strings.SplitN(string(body), "\n\n", 2)
	if len(parts) != 2 {
		return "", errors.New("google news: unexpected batchexecute response")
	}
	var rows [][]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(parts[1])), &rows); err != nil {
		return "", fmt.Errorf("google news: decode batchexecute: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) < 3 {
		return "", errors.New("google news: empty batchexecute response")
	}
	payload, ok := rows[0][2].(string)
	if !ok {
		return "", errors.New("google news: missing payload")
	}
	var inner []any
	if err := json.Unmarshal([]byte(payload), &inner); err != nil {
		return "", fmt.Errorf("google news: decode payload: %w", err)
	}
	if len(inner) < 2 {
		return "", errors.New("google news: short payload")
	}
	decoded, _ := inner[1].(string)
	if decoded == "" {
		return "", errors.New("google news: no url in payload")
	}
	return decoded, nil
}
