// Package multipart разбирает и собирает тела MIME multipart/*, то есть загрузки файлов по HTTP
// и составные ответы. Основные точки входа:
//   - ReadMultipart / ReadMultipartBody: разбирают поток байт в дерево из *Part (в памяти),
//     *FilePart (содержимое сразу пишется во временный файл) и *Multipart (вложенный контейнер).
//   - WriteMultipart / WriteMultipartChunked: сериализуют дерево обратно в байты, обычным телом
//     или чанками Transfer-Encoding: chunked.
//   - GenerateBoundary: случайная граница для исходящих тел.
//
// Терминатор строк (CRLF или голый LF) определяется отдельно для каждого контейнера по
// байтам после его первой границы. Content-Transfer-Encoding не интерпретируется.
// Ограничений на глубину вложенности, число и размер частей нет.
package multipart
