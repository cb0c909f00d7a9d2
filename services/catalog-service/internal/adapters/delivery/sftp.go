package delivery

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SFTPConfig параметры площадки, принимающей файлы выгрузки
type SFTPConfig struct {
	Host           string
	Port           int
	Username       string
	PrivateKeyPath string
	// KnownHostsPath пустой путь отключает проверку ключа хоста
	KnownHostsPath string
	OutboundDir    string
	Timeout        time.Duration
}

// SFTPDelivery выкладывает файлы выгрузки на SFTP площадки
type SFTPDelivery struct {
	cfg    SFTPConfig
	logger interfaces.LoggerPort
}

func NewSFTPDelivery(cfg SFTPConfig, logger interfaces.LoggerPort) *SFTPDelivery {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SFTPDelivery{cfg: cfg, logger: logger}
}

// RemotePath путь файла на сервере: OutboundDir/label/fileName, без ведущего "/"
func (d *SFTPDelivery) RemotePath(label, fileName string) string {
	return strings.TrimPrefix(path.Join(d.cfg.OutboundDir, label, path.Base(fileName)), "/")
}

// Deliver загружает data в RemotePath(label, fileName), создавая каталоги
func (d *SFTPDelivery) Deliver(ctx context.Context, label, fileName string, data []byte) (string, error) {
	clientCfg, err := d.clientConfig()
	if err != nil {
		return "", err
	}

	dialer := net.Dialer{Timeout: d.cfg.Timeout}
	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, clientCfg)
	if err != nil {
		_ = rawConn.Close()
		return "", fmt.Errorf("failed to open SSH session: %w", err)
	}
	conn := ssh.NewClient(sshConn, chans, reqs)
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return "", fmt.Errorf("failed to create SFTP client: %w", err)
	}
	defer client.Close()

	remotePath := d.RemotePath(label, fileName)
	if dir := path.Dir(remotePath); dir != "." {
		if err := client.MkdirAll(dir); err != nil {
			return "", fmt.Errorf("failed to create remote dir %s: %w", dir, err)
		}
	}

	f, err := client.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("failed to create remote file %s: %w", remotePath, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write remote file %s: %w", remotePath, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close remote file %s: %w", remotePath, err)
	}

	d.logger.InfoWithContext(ctx, "Файл выгрузки доставлен",
		interfaces.LogField{Key: "remote_path", Value: remotePath},
		interfaces.LogField{Key: "bytes", Value: len(data)},
	)
	return remotePath, nil
}

func (d *SFTPDelivery) clientConfig() (*ssh.ClientConfig, error) {
	key, err := os.ReadFile(d.cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if d.cfg.KnownHostsPath != "" {
		hostKeyCallback, err = knownhosts.New(d.cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            d.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         d.cfg.Timeout,
	}, nil
}
