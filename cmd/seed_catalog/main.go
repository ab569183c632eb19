// seed_catalog genera el script SQL que carga el catálogo de peajes, los vehículos registrados
// y sus tags a partir de los CSV de operación (peajes.csv y clientes.csv).
//
// Uso: go run ./cmd/seed_catalog [ruta/peajes.csv] [ruta/clientes.csv]
// Por defecto busca data/peajes.csv y data/clientes.csv en el directorio actual.
// Acepta CSV en UTF-8 o ISO-8859-1 (exportaciones de Excel).
// Escribe: internal/infrastructure/postgres/migrations/000002_seed_catalog.up.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	tollsPath := filepath.Join("data", "peajes.csv")
	clientsPath := filepath.Join("data", "clientes.csv")
	if len(os.Args) > 1 {
		tollsPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		clientsPath = os.Args[2]
	}

	tolls, err := readTollsFile(tollsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer peajes: %v\n", err)
		os.Exit(1)
	}
	clients, err := readClientsFile(clientsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer clientes: %v\n", err)
		os.Exit(1)
	}

	// Ruta del script de salida (relativa al módulo)
	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "000002_seed_catalog.up.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSeedSQL(out, tolls, clients); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d peajes, %d vehículos, %d tags\n", outPath, len(tolls), len(clients), countTags(clients))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
