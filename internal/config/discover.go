package config

import (
	"encoding/xml"
	"net"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultHadoopConfDir is read when HADOOP_CONF_DIR is unset.
const DefaultHadoopConfDir = "/etc/hadoop/conf"

// discovered holds what the environment says when the config file is
// silent.
type discovered struct {
	User      string
	Namenodes []Endpoint
}

func discover() discovered {
	confDir := os.Getenv("HADOOP_CONF_DIR")
	if confDir == "" {
		confDir = DefaultHadoopConfDir
	}
	return discovered{
		User:      discoverUser(),
		Namenodes: discoverNamenodes(confDir),
	}
}

func discoverUser() string {
	if u := os.Getenv("HADOOP_USER_NAME"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// hadoopConf is the <configuration> document of a *-site.xml file.
type hadoopConf struct {
	Properties []struct {
		Name  string `xml:"name"`
		Value string `xml:"value"`
	} `xml:"property"`
}

// readHadoopConf merges the properties of the named files in dir. Missing
// or malformed files are skipped.
func readHadoopConf(dir string, files ...string) map[string]string {
	props := make(map[string]string)
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var conf hadoopConf
		if err := xml.Unmarshal(data, &conf); err != nil {
			continue
		}
		for _, p := range conf.Properties {
			props[strings.TrimSpace(p.Name)] = strings.TrimSpace(p.Value)
		}
	}
	return props
}

// discoverNamenodes resolves fs.defaultFS. A nameservice expands to its
// HA namenodes in declaration order.
func discoverNamenodes(confDir string) []Endpoint {
	props := readHadoopConf(confDir, "core-site.xml", "hdfs-site.xml")

	u, err := url.Parse(props["fs.defaultFS"])
	if err != nil || u.Scheme != "hdfs" || u.Host == "" {
		return nil
	}

	ns := u.Hostname()
	if ids := props["dfs.ha.namenodes."+ns]; ids != "" && u.Port() == "" {
		var endpoints []Endpoint
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			rpc, ok := parseHostPort(props["dfs.namenode.rpc-address."+ns+"."+id], DefaultNamenodePort)
			if !ok {
				continue
			}
			if http, ok := parseHostPort(props["dfs.namenode.http-address."+ns+"."+id], DefaultNamenodeHTTPPort); ok {
				rpc.HTTPPort = http.Port
			} else {
				rpc.HTTPPort = DefaultNamenodeHTTPPort
			}
			endpoints = append(endpoints, rpc)
		}
		return endpoints
	}

	port := DefaultNamenodePort
	if p, err := strconv.Atoi(u.Port()); err == nil {
		port = p
	}
	httpPort := DefaultNamenodeHTTPPort
	if http, ok := parseHostPort(props["dfs.namenode.http-address"], DefaultNamenodeHTTPPort); ok {
		httpPort = http.Port
	}
	return []Endpoint{{Host: ns, Port: port, HTTPPort: httpPort}}
}

func parseHostPort(s string, defaultPort int) (Endpoint, bool) {
	if s == "" {
		return Endpoint{}, false
	}
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{Host: s, Port: defaultPort}, true
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Endpoint{}, false
	}
	return Endpoint{Host: host, Port: port}, true
}
