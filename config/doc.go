// Package config loads the configuration of a vine process.
//
// Values are read from defaults, an optional YAML file and environment
// variables, later sources overriding earlier ones:
//
//	log:
//	  level: info
//	  format: json
//	servers:
//	  public:
//	    host: 0.0.0.0
//	    port: 8080
//	    public_folder: ./public
//	  admin:
//	    protocol: h2c
//	    port: 9090
//
// Environment variables use the VINE_ prefix, an underscore between
// sections and a double underscore inside a key:
//
//	VINE_SERVERS_PUBLIC_PORT=8081
//	VINE_SERVERS_PUBLIC_PUBLIC__FOLDER=/srv/www
package config
