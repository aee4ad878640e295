// Package tracker asks tracker servers which storage server should receive an upload.
package tracker

import (
	"bytes"
	"sync/atomic"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/fdfs/pool"
	"github.com/hetianyi/fdfs/proto"
	"github.com/hetianyi/gox/convert"
	"github.com/hetianyi/gox/logger"
	"github.com/pkg/errors"
)

// PoolProvider hands out connection pools by endpoint.
type PoolProvider interface {
	ObtainPool(host string, port int, secure bool, persistent bool) pool.ObjectPool
}

// Client queries tracker servers in round robin order.
type Client struct {
	Servers []common.Server
	Pools   PoolProvider
	Secure  bool

	next uint64
}

func NewClient(servers []common.Server, pools PoolProvider, secure bool) *Client {
	return &Client{
		Servers: servers,
		Pools:   pools,
		Secure:  secure,
	}
}

// ResolveStoreEndpoint returns the storage server for an upload into group,
// an empty group lets the tracker choose.
func (c *Client) ResolveStoreEndpoint(group string) (*common.StorageEndpoint, error) {
	if len(c.Servers) == 0 {
		return nil, common.ErrNoTrackerAvailable
	}
	start := atomic.AddUint64(&c.next, 1)
	var lastErr error
	for i := 0; i < len(c.Servers); i++ {
		server := c.Servers[(start+uint64(i))%uint64(len(c.Servers))]
		endpoint, err := c.queryStore(&server, group)
		if err == nil {
			return endpoint, nil
		}
		if errors.Is(err, common.ErrNoStorageAvailable) {
			return nil, err
		}
		logger.Warn("tracker ", server.ConnectionString(), " query failed: ", err)
		lastErr = err
	}
	return nil, errors.Wrap(common.ErrNoTrackerAvailable, lastErr.Error())
}

func (c *Client) queryStore(server *common.Server, group string) (*common.StorageEndpoint, error) {
	p := c.Pools.ObtainPool(server.Host, int(server.Port), c.Secure, true)
	conn, err := p.GetObject(server.Host, int(server.Port))
	if err != nil {
		return nil, err
	}
	endpoint, err := exchange(conn, group)
	if err != nil && !errors.Is(err, common.ErrNoStorageAvailable) {
		conn.Close(true, false)
		return nil, err
	}
	conn.Close(false, true)
	return endpoint, err
}

func exchange(conn *pool.Conn, group string) (*common.StorageEndpoint, error) {
	var req []byte
	if group == "" {
		req = proto.PackHeader(common.TRACKER_PROTO_CMD_SERVICE_QUERY_STORE_WITHOUT_GROUP_ONE, 0, 0)
	} else {
		req = proto.PackHeader(common.TRACKER_PROTO_CMD_SERVICE_QUERY_STORE_WITH_GROUP_ONE, common.FDFS_GROUP_NAME_MAX_LEN, 0)
		req = append(req, PadGroupName(group)...)
	}
	if _, err := conn.Write(req); err != nil {
		return nil, err
	}
	pkg, err := proto.ReadPackage(conn, common.TRACKER_PROTO_CMD_RESP,
		common.TRACKER_QUERY_STORAGE_STORE_BODY_LEN, common.TRACKER_SOURCE)
	if err != nil {
		return nil, err
	}
	if pkg.ErrorNo != 0 {
		return nil, errors.Wrapf(common.ErrNoStorageAvailable, "tracker error code %d", pkg.ErrorNo)
	}
	return ParseStoreBody(pkg.Body), nil
}

// PadGroupName cuts or zero-pads a group name to the protocol width.
func PadGroupName(group string) []byte {
	buff := make([]byte, common.FDFS_GROUP_NAME_MAX_LEN)
	copy(buff, group)
	return buff
}

// ParseStoreBody decodes group(16) + ip(15) + port(8) + store path index(1).
func ParseStoreBody(body []byte) *common.StorageEndpoint {
	pos := 0
	group := trimField(body[pos : pos+common.FDFS_GROUP_NAME_MAX_LEN])
	pos += common.FDFS_GROUP_NAME_MAX_LEN
	ip := trimField(body[pos : pos+common.IP_ADDRESS_SIZE-1])
	pos += common.IP_ADDRESS_SIZE - 1
	port := convert.Bytes2Length(body[pos : pos+common.FDFS_PROTO_PKG_LEN_SIZE])
	pos += common.FDFS_PROTO_PKG_LEN_SIZE
	return &common.StorageEndpoint{
		Server: common.Server{
			Host: ip,
			Port: uint16(port),
		},
		Group:          group,
		StorePathIndex: body[pos],
	}
}

func trimField(bs []byte) string {
	return string(bytes.Trim(bs, " \x00"))
}
